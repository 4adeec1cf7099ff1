package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/security"
)

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create adds an account on behalf of staff. Patient accounts require
// the patient profile fields.
func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.UserResponse, error) {
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

	status := req.AccountStatus
	if status == "" {
		status = model.AccountStatusActive
	}

	user := &model.User{
		Base:          model.Base{ID: uuid.New()},
		FullName:      req.FullName,
		Username:      req.Username,
		Email:         strings.ToLower(req.Email),
		PasswordHash:  hash,
		Role:          req.Role,
		AccountStatus: status,
	}
	if req.Role == model.RolePatient {
		user.PatientCode = req.PatientCode
		user.Age = req.Age
		user.Condition = req.Condition
		user.LastVisit = req.LastVisit
		user.PatientStatus = req.PatientStatus
		user.Phone = req.Phone
		user.Address = req.Address
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// List returns a page of users matching the filter.
func (s *Service) List(ctx context.Context, filter *model.UserFilter) ([]*model.UserResponse, int, error) {
	filter.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return sanitizeAll(users), total, nil
}

// ListPatients returns all patient accounts.
func (s *Service) ListPatients(ctx context.Context) ([]*model.UserResponse, error) {
	users, err := s.repo.ListByRole(ctx, model.RolePatient)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return sanitizeAll(users), nil
}

// Update applies partial changes on behalf of staff. Physicians may
// edit any account, typically their patients' profiles; role and
// status changes are reserved for admins.
func (s *Service) Update(ctx context.Context, id uuid.UUID, requester *model.TokenClaims, req *model.UpdateUserRequest) (*model.UserResponse, error) {
	if requester.Role != model.RoleAdmin && (req.Role != nil || req.AccountStatus != nil) {
		return nil, apperrors.Forbidden("only administrators may change role or account status")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.AccountStatus != nil {
		user.AccountStatus = *req.AccountStatus
	}
	if req.PatientCode != nil {
		user.PatientCode = req.PatientCode
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Condition != nil {
		user.Condition = req.Condition
	}
	if req.LastVisit != nil {
		user.LastVisit = req.LastVisit
	}
	if req.PatientStatus != nil {
		user.PatientStatus = req.PatientStatus
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// SetStatus toggles an account between active and inactive, or sets an
// explicit status.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status model.AccountStatus) (*model.UserResponse, error) {
	if !status.IsValid() {
		return nil, apperrors.Validation("invalid account status")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.AccountStatus = status
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) error {
	if requester.UserID == id {
		return apperrors.Conflict("you cannot delete your own account")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (*model.UserStats, error) {
	return s.repo.Stats(ctx)
}

func sanitizeAll(users []*model.User) []*model.UserResponse {
	out := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out
}
