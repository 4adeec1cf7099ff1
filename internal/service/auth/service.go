package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	"github.com/medicore/clinic-api/pkg/auth"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

// Register creates a new account. Patient registrations additionally
// require the patient profile fields; the handler gates who may call
// this with role=patient.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req.Role == model.RolePatient {
		if req.PatientCode == nil || req.Age == nil || req.Condition == nil ||
			req.Phone == nil || req.Address == nil {
			return nil, apperrors.Validation("please provide all required patient fields (patient_code, age, condition, phone, address)")
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password")
	}

	user := &model.User{
		Base:          model.Base{ID: uuid.New()},
		FullName:      req.FullName,
		Username:      req.Username,
		Email:         strings.ToLower(req.Email),
		PasswordHash:  hash,
		Role:          req.Role,
		AccountStatus: model.AccountStatusActive,
	}
	if req.Role == model.RolePatient {
		user.PatientCode = req.PatientCode
		user.Age = req.Age
		user.Condition = req.Condition
		user.Phone = req.Phone
		user.Address = req.Address
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Account status gates
// login independent of role: only active accounts may log in.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password", nil)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password", nil)
	}

	if user.AccountStatus != model.AccountStatusActive {
		return nil, apperrors.Forbidden("account is not active, please contact administrator")
	}

	token, err := s.jwtSvc.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.LoginResponse{
		Token: token,
		User:  user.Sanitized(),
	}, nil
}

// CurrentUser returns the sanitized account for a verified identity.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ResetPassword replaces the password of the account with the given
// email. Callers are already authenticated; the route restricts this
// to admin and physician.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Validation("invalid password")
	}

	user.PasswordHash = hash
	return s.userRepo.Update(ctx, user)
}
