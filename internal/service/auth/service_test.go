package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/clinic-api/internal/model"
	pkgauth "github.com/medicore/clinic-api/pkg/auth"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/security"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return apperrors.Conflict("email or username already in use")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (r *fakeUserRepo) GetByPatientCode(_ context.Context, code string) (*model.User, error) {
	for _, u := range r.users {
		if u.PatientCode != nil && *u.PatientCode == code {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("patient")
}

func (r *fakeUserRepo) List(_ context.Context, _ *model.UserFilter) ([]*model.User, int, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, _ model.Role) ([]*model.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Stats(_ context.Context) (*model.UserStats, error) {
	return &model.UserStats{}, nil
}

func newTestService() (*Service, pkgauth.JWTService) {
	jwtSvc := pkgauth.NewJWTService("test-secret", time.Hour)
	return NewService(newFakeUserRepo(), jwtSvc, security.NewBcryptHasher(4)), jwtSvc
}

func physicianRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		FullName: "Dr. Meredith Grey",
		Username: "mgrey",
		Email:    "Meredith@Clinic.Test",
		Password: "seattle-grace",
		Role:     model.RolePhysician,
	}
}

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	svc, jwtSvc := newTestService()

	registered, err := svc.Register(context.Background(), physicianRequest())
	require.NoError(t, err)
	assert.Equal(t, "meredith@clinic.test", registered.Email, "emails are stored lowercased")
	assert.Equal(t, model.AccountStatusActive, registered.AccountStatus)

	// Login is case-stored but exact-match on the stored email.
	resp, err := svc.Login(context.Background(), "meredith@clinic.test", "seattle-grace")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.ID, resp.User.ID)

	claims, err := jwtSvc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, model.RolePhysician, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), physicianRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "meredith@clinic.test", "wrong-password")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	_, err = svc.Login(context.Background(), "nobody@clinic.test", "seattle-grace")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newTestService()
	registered, err := svc.Register(context.Background(), physicianRequest())
	require.NoError(t, err)

	// Deactivate directly through the repo.
	registered.AccountStatus = model.AccountStatusSuspended
	require.NoError(t, svc.userRepo.Update(context.Background(), registered))

	_, err = svc.Login(context.Background(), "meredith@clinic.test", "seattle-grace")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), physicianRequest())
	require.NoError(t, err)

	dup := physicianRequest()
	dup.Username = "other"
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegisterPatientRequiresProfile(t *testing.T) {
	svc, _ := newTestService()

	req := &model.RegisterRequest{
		FullName: "Pat Doe",
		Username: "pdoe",
		Email:    "pat@clinic.test",
		Password: "super-secret",
		Role:     model.RolePatient,
	}
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	code, age, condition, phone, address := "PAT-001", 34, "hypertension", "555-0100", "12 Main St"
	req.PatientCode, req.Age, req.Condition, req.Phone, req.Address = &code, &age, &condition, &phone, &address
	registered, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "PAT-001", *registered.PatientCode)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), physicianRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), "meredith@clinic.test", "new-password"))

	_, err = svc.Login(context.Background(), "meredith@clinic.test", "seattle-grace")
	require.Error(t, err)

	_, err = svc.Login(context.Background(), "meredith@clinic.test", "new-password")
	require.NoError(t, err)
}
