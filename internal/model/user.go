package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RolePhysician Role = "physician"
	RolePatient   Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePhysician, RolePatient:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusSuspended:
		return true
	}
	return false
}

// User is an account record. Patient-specific fields are null for admins
// and physicians and are never serialized for them.
type User struct {
	Base
	FullName      string        `db:"full_name" json:"full_name"`
	Username      string        `db:"username" json:"username"`
	Email         string        `db:"email" json:"email"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	Role          Role          `db:"role" json:"role"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`

	PatientCode   *string    `db:"patient_code" json:"patient_code,omitempty"`
	Age           *int       `db:"age" json:"age,omitempty"`
	Condition     *string    `db:"condition" json:"condition,omitempty"`
	LastVisit     *time.Time `db:"last_visit" json:"last_visit,omitempty"`
	PatientStatus *string    `db:"patient_status" json:"patient_status,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
}

// Sanitized returns the role-gated view of a user: patient fields are
// only exposed on patient accounts, the password hash never.
func (u *User) Sanitized() *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		AccountStatus: u.AccountStatus,
		CreatedAt:     u.CreatedAt,
	}
	if u.Role == RolePatient {
		resp.PatientCode = u.PatientCode
		resp.Age = u.Age
		resp.Condition = u.Condition
		resp.LastVisit = u.LastVisit
		resp.PatientStatus = u.PatientStatus
		resp.Phone = u.Phone
		resp.Address = u.Address
	}
	return resp
}

type UserResponse struct {
	ID            uuid.UUID     `json:"id"`
	FullName      string        `json:"full_name"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	AccountStatus AccountStatus `json:"account_status"`
	CreatedAt     time.Time     `json:"created_at"`

	PatientCode   *string    `json:"patient_code,omitempty"`
	Age           *int       `json:"age,omitempty"`
	Condition     *string    `json:"condition,omitempty"`
	LastVisit     *time.Time `json:"last_visit,omitempty"`
	PatientStatus *string    `json:"patient_status,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Address       *string    `json:"address,omitempty"`
}

type CreateUserRequest struct {
	FullName      string        `json:"full_name" binding:"required,min=3"`
	Username      string        `json:"username" binding:"required,min=3"`
	Email         string        `json:"email" binding:"required,email"`
	Password      string        `json:"password" binding:"required,min=6"`
	Role          Role          `json:"role" binding:"required,oneof=admin physician patient"`
	AccountStatus AccountStatus `json:"account_status" binding:"omitempty,oneof=active inactive suspended"`

	PatientCode   *string    `json:"patient_code"`
	Age           *int       `json:"age"`
	Condition     *string    `json:"condition"`
	LastVisit     *time.Time `json:"last_visit"`
	PatientStatus *string    `json:"patient_status"`
	Phone         *string    `json:"phone"`
	Address       *string    `json:"address"`
}

type UpdateUserRequest struct {
	FullName      *string        `json:"full_name" binding:"omitempty,min=3"`
	Username      *string        `json:"username" binding:"omitempty,min=3"`
	Email         *string        `json:"email" binding:"omitempty,email"`
	Role          *Role          `json:"role" binding:"omitempty,oneof=admin physician patient"`
	AccountStatus *AccountStatus `json:"account_status" binding:"omitempty,oneof=active inactive suspended"`

	PatientCode   *string    `json:"patient_code"`
	Age           *int       `json:"age"`
	Condition     *string    `json:"condition"`
	LastVisit     *time.Time `json:"last_visit"`
	PatientStatus *string    `json:"patient_status"`
	Phone         *string    `json:"phone"`
	Address       *string    `json:"address"`
}

type UserFilter struct {
	Pagination
	Search string `form:"search"`
	Role   Role   `form:"role"`
	Status AccountStatus `form:"status"`
}

// UserStats backs the admin dashboard counters.
type UserStats struct {
	TotalUsers        int          `json:"total_users"`
	ActivatedAccounts int          `json:"activated_accounts"`
	TotalAdmins       int          `json:"total_admins"`
	TotalPhysicians   int          `json:"total_physicians"`
	TotalPatients     int          `json:"total_patients"`
	RoleDistribution  map[Role]int `json:"role_distribution"`
}
