package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/clinic-api/internal/model"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	for _, existing := range r.appointments {
		if existing.PhysicianID == apt.PhysicianID &&
			existing.Date.Equal(apt.Date) &&
			existing.TimeSlot == apt.TimeSlot &&
			existing.Status != model.AppointmentStatusCancelled {
			return apperrors.Conflict("this time slot is already booked")
		}
	}
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment")
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return apperrors.NotFound("appointment")
	}
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if filter.PhysicianID != uuid.Nil && apt.PhysicianID != filter.PhysicianID {
			continue
		}
		if filter.PatientID != uuid.Nil && apt.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && apt.Status != filter.Status {
			continue
		}
		cp := *apt
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) SlotTaken(_ context.Context, physicianID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error) {
	for _, apt := range r.appointments {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.PhysicianID == physicianID && apt.Date.Equal(date) &&
			apt.TimeSlot == slot && apt.Status != model.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) BookedSlots(_ context.Context, physicianID uuid.UUID, date time.Time) ([]string, error) {
	var slots []string
	for _, apt := range r.appointments {
		if apt.PhysicianID == physicianID && apt.Date.Equal(date) &&
			apt.Status != model.AppointmentStatusCancelled {
			slots = append(slots, apt.TimeSlot)
		}
	}
	return slots, nil
}

func (r *fakeAppointmentRepo) CountForDay(_ context.Context, day time.Time) (int, error) {
	count := 0
	for _, apt := range r.appointments {
		if apt.Date.Equal(day) {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.User
	getErr error
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
	if r.getErr != nil {
		return nil, r.getErr
	}
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
	var out []*model.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
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
	stats := &model.UserStats{RoleDistribution: make(map[model.Role]int)}
	for _, u := range r.users {
		stats.TotalUsers++
		if u.AccountStatus == model.AccountStatusActive {
			stats.ActivatedAccounts++
		}
		stats.RoleDistribution[u.Role]++
	}
	stats.TotalAdmins = stats.RoleDistribution[model.RoleAdmin]
	stats.TotalPhysicians = stats.RoleDistribution[model.RolePhysician]
	stats.TotalPatients = stats.RoleDistribution[model.RolePatient]
	return stats, nil
}

func testPatient() *model.User {
	code := "PAT-001"
	return &model.User{
		Base:          model.Base{ID: uuid.New()},
		FullName:      "Pat Doe",
		Role:          model.RolePatient,
		AccountStatus: model.AccountStatusActive,
		PatientCode:   &code,
	}
}

func testPhysician() *model.User {
	return &model.User{
		Base:          model.Base{ID: uuid.New()},
		FullName:      "Dr. Grey",
		Role:          model.RolePhysician,
		AccountStatus: model.AccountStatusActive,
	}
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(dateLayout)
}

func TestCreateAppointment(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, patient.ID, apt.PatientID)
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	patient := testPatient()
	other := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, other, physician))

	req := &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "10:30",
		Reason:      "persistent morning headaches",
	}

	_, err := svc.Create(context.Background(), patient.ID, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), other.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreateAppointmentValidation(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	base := model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	}

	tests := []struct {
		name   string
		mutate func(*model.CreateAppointmentRequest)
	}{
		{"malformed slot", func(r *model.CreateAppointmentRequest) { r.TimeSlot = "9am" }},
		{"before opening", func(r *model.CreateAppointmentRequest) { r.TimeSlot = "07:30" }},
		{"after closing", func(r *model.CreateAppointmentRequest) { r.TimeSlot = "17:30" }},
		{"past date", func(r *model.CreateAppointmentRequest) { r.Date = "2020-01-01" }},
		{"bad date format", func(r *model.CreateAppointmentRequest) { r.Date = "01-01-2030" }},
		{"unknown department", func(r *model.CreateAppointmentRequest) { r.Department = "Dermatology" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), patient.ID, &req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestCreateAppointmentInactivePatient(t *testing.T) {
	patient := testPatient()
	patient.AccountStatus = model.AccountStatusSuspended
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	_, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCreateAppointmentNonPhysician(t *testing.T) {
	patient := testPatient()
	other := testPatient()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, other))

	_, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: other.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateAppointmentPhysicianLookupErrors(t *testing.T) {
	patient := testPatient()
	userRepo := newFakeUserRepo(patient)
	svc := NewService(newFakeAppointmentRepo(), userRepo)

	req := &model.CreateAppointmentRequest{
		PhysicianID: uuid.New(),
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	}

	// Unknown physician reads as not found.
	_, err := svc.Create(context.Background(), patient.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// A store failure is not a missing physician.
	userRepo.getErr = errors.New("connection reset")
	_, err = svc.Create(context.Background(), patient.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
}

func TestAvailableSlotsExcludeBooked(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	date := tomorrow()
	_, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        date,
		TimeSlot:    "09:00",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), physician.ID, date)
	require.NoError(t, err)
	assert.NotContains(t, slots, "09:00")
	assert.Contains(t, slots, "08:00")
	assert.Len(t, slots, len(allSlots())-1)
}

func TestCancelFreesSlot(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	date := tomorrow()
	req := &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentBloodTest,
		Date:        date,
		TimeSlot:    "11:00",
		Reason:      "routine blood panel follow-up",
	}

	apt, err := svc.Create(context.Background(), patient.ID, req)
	require.NoError(t, err)

	claims := &model.TokenClaims{UserID: patient.ID, Role: model.RolePatient}
	cancelled, err := svc.Cancel(context.Background(), apt.ID, claims)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	// Slot is rebookable once the original is cancelled.
	_, err = svc.Create(context.Background(), patient.ID, req)
	require.NoError(t, err)
}

func TestCancelTerminalAppointment(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "14:00",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	claims := &model.TokenClaims{UserID: patient.ID, Role: model.RolePatient}
	_, err = svc.Cancel(context.Background(), apt.ID, claims)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), apt.ID, claims)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCancelOnlyOwnerOrAdmin(t *testing.T) {
	patient := testPatient()
	stranger := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, stranger, physician))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "14:00",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), apt.ID, &model.TokenClaims{UserID: stranger.ID, Role: model.RolePatient})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = svc.Cancel(context.Background(), apt.ID, &model.TokenClaims{UserID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
}

func TestUpdateStatusTerminalGuard(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "15:30",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	claims := &model.TokenClaims{UserID: physician.ID, Role: model.RolePhysician}
	_, err = svc.UpdateStatus(context.Background(), apt.ID,
		&model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted}, claims)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID,
		&model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusNoShow}, claims)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestUpdateStatusOnlyOwningPhysician(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	other := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician, other))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "15:30",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID,
		&model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted},
		&model.TokenClaims{UserID: other.ID, Role: model.RolePhysician})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestRescheduleIgnoresOwnSlot(t *testing.T) {
	patient := testPatient()
	physician := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physician))

	apt, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        tomorrow(),
		TimeSlot:    "09:30",
		Reason:      "persistent morning headaches",
	})
	require.NoError(t, err)

	// Rescheduling onto its own slot must not conflict with itself.
	slot := "09:30"
	updated, err := svc.UpdateStatus(context.Background(), apt.ID,
		&model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusScheduled, TimeSlot: &slot},
		&model.TokenClaims{UserID: physician.ID, Role: model.RolePhysician})
	require.NoError(t, err)
	assert.Equal(t, "09:30", updated.TimeSlot)
}

func TestListScopesPhysicianToOwnSchedule(t *testing.T) {
	patient := testPatient()
	physA := testPhysician()
	physB := testPhysician()
	svc := NewService(newFakeAppointmentRepo(), newFakeUserRepo(patient, physA, physB))

	for _, phys := range []*model.User{physA, physB} {
		_, err := svc.Create(context.Background(), patient.ID, &model.CreateAppointmentRequest{
			PhysicianID: phys.ID,
			Department:  model.DepartmentGeneralMedicine,
			Date:        tomorrow(),
			TimeSlot:    "10:00",
			Reason:      "persistent morning headaches",
		})
		require.NoError(t, err)
	}

	mine, err := svc.List(context.Background(), &model.TokenClaims{UserID: physA.ID, Role: model.RolePhysician})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(context.Background(), &model.TokenClaims{UserID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
