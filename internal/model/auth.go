package model

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=3"`
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,oneof=admin physician patient"`

	// Patient-only fields, required by the service when Role is patient.
	PatientCode *string `json:"patient_code"`
	Age         *int    `json:"age"`
	Condition   *string `json:"condition"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// LoginResponse carries the issued token and the sanitized account.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// TokenClaims is the verified identity derived from a bearer token.
// Role always comes from the signed claim, never from any cache.
type TokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
