package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
	}
}

// Create books an appointment for the requesting patient. The slot
// check here only exists to give a friendly conflict error; the unique
// index behind repo.Create is what actually prevents the race.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := validateSlot(req.TimeSlot); err != nil {
		return nil, err
	}
	if date.Before(today()) {
		return nil, apperrors.Validation("appointment date cannot be in the past")
	}
	if !req.Department.IsValid() {
		return nil, apperrors.Validation("invalid department selected")
	}

	physician, err := s.userRepo.Get(ctx, req.PhysicianID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("physician")
		}
		return nil, apperrors.Internal(err)
	}
	if physician.Role != model.RolePhysician {
		return nil, apperrors.Validation("selected user is not a physician")
	}

	patient, err := s.userRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.AccountStatus != model.AccountStatusActive {
		return nil, apperrors.Forbidden("patient account is not active, please contact administrator")
	}

	taken, err := s.repo.SlotTaken(ctx, req.PhysicianID, date, req.TimeSlot, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.Conflict("this time slot is already booked")
	}

	apt := &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   patientID,
		PhysicianID: req.PhysicianID,
		Department:  req.Department,
		Date:        date,
		TimeSlot:    req.TimeSlot,
		Reason:      req.Reason,
		Status:      model.AppointmentStatusScheduled,
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// AvailableSlots returns the free half-hour slots for a physician on a
// date, recomputed on every call.
func (s *Service) AvailableSlots(ctx context.Context, physicianID uuid.UUID, rawDate string) ([]string, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedSlots(ctx, physicianID, date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	available := make([]string, 0)
	for _, slot := range allSlots() {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch requester.Role {
	case model.RoleAdmin, model.RolePhysician:
	default:
		if apt.PatientID != requester.UserID {
			return nil, apperrors.Forbidden("not authorized to view this appointment")
		}
	}
	return apt, nil
}

// List returns appointments visible to the requester: everything for
// admins, own schedule for physicians.
func (s *Service) List(ctx context.Context, requester *model.TokenClaims) ([]*model.Appointment, error) {
	filter := &model.AppointmentFilter{}
	if requester.Role == model.RolePhysician {
		filter.PhysicianID = requester.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilter{PatientID: patientID})
}

// UpdateStatus transitions an appointment. Scheduled is the only
// non-terminal state; completed, cancelled and no-show admit no
// further transitions. An optional new date/slot reschedules the
// appointment under the same validation as creation.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentStatusRequest, requester *model.TokenClaims) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.Role != model.RoleAdmin &&
		!(requester.Role == model.RolePhysician && apt.PhysicianID == requester.UserID) {
		return nil, apperrors.Forbidden("not authorized to update this appointment")
	}

	if apt.Status.IsTerminal() {
		return nil, apperrors.Conflict("appointment is already " + string(apt.Status))
	}
	if !req.Status.IsValid() {
		return nil, apperrors.Validation("invalid appointment status")
	}

	if req.Date != nil || req.TimeSlot != nil {
		if err := s.reschedule(ctx, apt, req); err != nil {
			return nil, err
		}
	}

	apt.Status = req.Status
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) reschedule(ctx context.Context, apt *model.Appointment, req *model.UpdateAppointmentStatusRequest) error {
	date := apt.Date
	slot := apt.TimeSlot

	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		date = parsed
	}
	if req.TimeSlot != nil {
		if err := validateSlot(*req.TimeSlot); err != nil {
			return err
		}
		slot = *req.TimeSlot
	}

	taken, err := s.repo.SlotTaken(ctx, apt.PhysicianID, date, slot, &apt.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if taken {
		return apperrors.Conflict("this time slot is already booked")
	}

	apt.Date = date
	apt.TimeSlot = slot
	return nil
}

// Cancel sets an appointment to cancelled, keeping the record so the
// slot frees up for rebooking. Allowed for admins and the owning
// patient.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.Role != model.RoleAdmin && apt.PatientID != requester.UserID {
		return nil, apperrors.Forbidden("not authorized to cancel this appointment")
	}

	if apt.Status.IsTerminal() {
		return nil, apperrors.Conflict("appointment is already " + string(apt.Status))
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func validateSlot(slot string) error {
	if !ValidTimeSlot(slot) {
		return apperrors.Validation("invalid time slot format, please use HH:MM (e.g. 09:00)")
	}
	if !WithinBusinessHours(slot) {
		return apperrors.Validation("appointments are only available during business hours (8:00 AM - 5:00 PM)")
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date, please use YYYY-MM-DD")
	}
	return date, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
