package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/clinic-api/internal/model"
	authservice "github.com/medicore/clinic-api/internal/service/auth"
	pkgauth "github.com/medicore/clinic-api/pkg/auth"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/security"
)

// Full patient journey: register, log in, book, hit the double-booking
// conflict, cancel, rebook the freed slot.
func TestPatientBookingScenario(t *testing.T) {
	ctx := context.Background()

	physician := testPhysician()
	userRepo := newFakeUserRepo(physician)
	jwtSvc := pkgauth.NewJWTService("test-secret", time.Hour)
	authSvc := authservice.NewService(userRepo, jwtSvc, security.NewBcryptHasher(4))
	aptSvc := NewService(newFakeAppointmentRepo(), userRepo)

	code, age, condition, phone, address := "PAT-100", 29, "asthma", "555-0100", "1 Elm St"
	alice, err := authSvc.Register(ctx, &model.RegisterRequest{
		FullName:    "Alice Park",
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "pw123456",
		Role:        model.RolePatient,
		PatientCode: &code, Age: &age, Condition: &condition, Phone: &phone, Address: &address,
	})
	require.NoError(t, err)

	login, err := authSvc.Login(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)
	claims, err := jwtSvc.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, claims.Role)

	date := tomorrow()
	req := &model.CreateAppointmentRequest{
		PhysicianID: physician.ID,
		Department:  model.DepartmentGeneralMedicine,
		Date:        date,
		TimeSlot:    "09:00",
		Reason:      "shortness of breath during exercise",
	}

	first, err := aptSvc.Create(ctx, claims.UserID, req)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, first.Status)

	_, err = aptSvc.Create(ctx, alice.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	slots, err := aptSvc.AvailableSlots(ctx, physician.ID, date)
	require.NoError(t, err)
	assert.NotContains(t, slots, "09:00")

	_, err = aptSvc.Cancel(ctx, first.ID, claims)
	require.NoError(t, err)

	slots, err = aptSvc.AvailableSlots(ctx, physician.ID, date)
	require.NoError(t, err)
	assert.Contains(t, slots, "09:00")
}
