package advice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/clinic-api/internal/model"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

type fakeAdviceRepo struct {
	records map[uuid.UUID]*model.Advice
}

func newFakeAdviceRepo() *fakeAdviceRepo {
	return &fakeAdviceRepo{records: make(map[uuid.UUID]*model.Advice)}
}

func (r *fakeAdviceRepo) Create(_ context.Context, a *model.Advice) error {
	cp := *a
	r.records[a.ID] = &cp
	return nil
}

func (r *fakeAdviceRepo) Get(_ context.Context, id uuid.UUID) (*model.Advice, error) {
	a, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound("advice request")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdviceRepo) Update(_ context.Context, a *model.Advice) error {
	if _, ok := r.records[a.ID]; !ok {
		return apperrors.NotFound("advice request")
	}
	cp := *a
	r.records[a.ID] = &cp
	return nil
}

func (r *fakeAdviceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.records[id]; !ok {
		return apperrors.NotFound("advice request")
	}
	delete(r.records, id)
	return nil
}

func (r *fakeAdviceRepo) List(_ context.Context, patientID uuid.UUID, status model.AdviceStatus, urgency model.Urgency) ([]*model.Advice, error) {
	var out []*model.Advice
	for _, a := range r.records {
		if patientID != uuid.Nil && a.PatientID != patientID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		if urgency != "" && a.Urgency != urgency {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAdviceRepo) CountByStatus(_ context.Context, status model.AdviceStatus) (int, error) {
	count := 0
	for _, a := range r.records {
		if a.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeAdviceRepo) Recent(_ context.Context, limit int) ([]*model.Advice, error) {
	var out []*model.Advice
	for _, a := range r.records {
		if len(out) == limit {
			break
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
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

func (r *fakeUserRepo) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	var out []*model.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
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

type fakeNotifier struct {
	requests []*model.CreateNotificationRequest
}

func (n *fakeNotifier) Create(_ context.Context, _ uuid.UUID, req *model.CreateNotificationRequest) ([]*model.Notification, error) {
	n.requests = append(n.requests, req)
	return nil, nil
}

func testPatient(code string) *model.User {
	return &model.User{
		Base:          model.Base{ID: uuid.New()},
		FullName:      "Pat Doe",
		Role:          model.RolePatient,
		AccountStatus: model.AccountStatusActive,
		PatientCode:   &code,
	}
}

func patientClaims(u *model.User) *model.TokenClaims {
	return &model.TokenClaims{UserID: u.ID, Role: model.RolePatient}
}

func TestCreateAdviceAsPatient(t *testing.T) {
	patient := testPatient("PAT-001")
	notifier := &fakeNotifier{}
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient), notifier)

	created, err := svc.Create(context.Background(), patientClaims(patient), &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
		Urgency:     model.UrgencyHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AdviceStatusPending, created.Status)
	assert.Equal(t, patient.ID, created.PatientID)

	// Physicians get notified of the new request.
	require.Len(t, notifier.requests, 1)
	assert.Equal(t, model.NotificationTypeAdviceRequest, notifier.requests[0].Type)
	require.NotNil(t, notifier.requests[0].TargetRole)
	assert.Equal(t, model.RolePhysician, *notifier.requests[0].TargetRole)
}

func TestCreateAdviceResolvesPatientCode(t *testing.T) {
	patient := testPatient("PAT-042")
	physician := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RolePhysician, AccountStatus: model.AccountStatusActive}
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient, physician), &fakeNotifier{})
	claims := &model.TokenClaims{UserID: physician.ID, Role: model.RolePhysician}

	// By patient code.
	created, err := svc.Create(context.Background(), claims, &model.CreateAdviceRequest{
		PatientID:   "PAT-042",
		Condition:   "type 2 diabetes",
		Medications: "metformin 500mg",
	})
	require.NoError(t, err)
	assert.Equal(t, patient.ID, created.PatientID)

	// Falls back to the internal id.
	created, err = svc.Create(context.Background(), claims, &model.CreateAdviceRequest{
		PatientID:   patient.ID.String(),
		Condition:   "type 2 diabetes",
		Medications: "metformin 500mg",
	})
	require.NoError(t, err)
	assert.Equal(t, patient.ID, created.PatientID)

	// Unknown code and unparseable id.
	_, err = svc.Create(context.Background(), claims, &model.CreateAdviceRequest{
		PatientID:   "PAT-999",
		Condition:   "type 2 diabetes",
		Medications: "metformin 500mg",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateAdviceInactivePatient(t *testing.T) {
	patient := testPatient("PAT-001")
	patient.AccountStatus = model.AccountStatusInactive
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient), &fakeNotifier{})

	_, err := svc.Create(context.Background(), patientClaims(patient), &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestAdviceStateMachine(t *testing.T) {
	patient := testPatient("PAT-001")
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient), &fakeNotifier{})

	created, err := svc.Create(context.Background(), patientClaims(patient), &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AdviceStatusApproved, approved.Status)

	// Terminal records admit no further transitions, in either
	// direction.
	_, err = svc.Reject(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = svc.Approve(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRecommendationsOnlyApproved(t *testing.T) {
	patient := testPatient("PAT-001")
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient), &fakeNotifier{})
	claims := patientClaims(patient)

	first, err := svc.Create(context.Background(), claims, &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), claims, &model.CreateAdviceRequest{
		Condition:   "seasonal allergies",
		Medications: "cetirizine 10mg",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), second.ID)
	require.NoError(t, err)

	history, err := svc.ListForPatient(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	recommendations, err := svc.Recommendations(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	assert.Equal(t, first.ID, recommendations[0].ID)
}

func TestUpdateAdviceOwnerAndPendingOnly(t *testing.T) {
	patient := testPatient("PAT-001")
	stranger := testPatient("PAT-002")
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient, stranger), &fakeNotifier{})

	created, err := svc.Create(context.Background(), patientClaims(patient), &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
	})
	require.NoError(t, err)

	condition := "chronic migraines"
	_, err = svc.Update(context.Background(), created.ID, patientClaims(stranger),
		&model.UpdateAdviceRequest{Condition: &condition})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	updated, err := svc.Update(context.Background(), created.ID, patientClaims(patient),
		&model.UpdateAdviceRequest{Condition: &condition})
	require.NoError(t, err)
	assert.Equal(t, condition, updated.Condition)

	_, err = svc.Approve(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, patientClaims(patient),
		&model.UpdateAdviceRequest{Condition: &condition})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestDeleteAdvice(t *testing.T) {
	patient := testPatient("PAT-001")
	stranger := testPatient("PAT-002")
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(patient, stranger), &fakeNotifier{})

	created, err := svc.Create(context.Background(), patientClaims(patient), &model.CreateAdviceRequest{
		Condition:   "recurring migraines",
		Medications: "ibuprofen as needed",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID, patientClaims(stranger))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = svc.Delete(context.Background(), created.ID, patientClaims(patient))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, patientClaims(patient))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListByUrgencyValidation(t *testing.T) {
	svc := NewService(newFakeAdviceRepo(), newFakeUserRepo(), &fakeNotifier{})

	_, err := svc.ListByUrgency(context.Background(), "Critical")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
