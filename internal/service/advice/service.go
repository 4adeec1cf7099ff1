package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

// Notifier fans a notification out to its targets. Fan-out from advice
// creation is best-effort and never fails the request.
type Notifier interface {
	Create(ctx context.Context, sourceUserID uuid.UUID, req *model.CreateNotificationRequest) ([]*model.Notification, error)
}

type Service struct {
	repo     repository.AdviceRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewService(repo repository.AdviceRepository, userRepo repository.UserRepository, notifier Notifier) *Service {
	return &Service{repo: repo, userRepo: userRepo, notifier: notifier}
}

// Create records a pending advice request. Patients file for
// themselves; physicians and admins file on behalf of a patient
// identified by patient code, falling back to the internal id.
func (s *Service) Create(ctx context.Context, requester *model.TokenClaims, req *model.CreateAdviceRequest) (*model.Advice, error) {
	patient, err := s.resolvePatient(ctx, requester, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.AccountStatus != model.AccountStatusActive {
		return nil, apperrors.Forbidden("patient account is not active")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = model.UrgencyNormal
	}

	advice := &model.Advice{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   patient.ID,
		Condition:   req.Condition,
		Medications: req.Medications,
		Lifestyle:   req.Lifestyle,
		Urgency:     urgency,
		Status:      model.AdviceStatusPending,
	}
	if err := s.repo.Create(ctx, advice); err != nil {
		return nil, err
	}

	s.notifyPhysicians(ctx, requester.UserID, patient, advice)
	return advice, nil
}

func (s *Service) resolvePatient(ctx context.Context, requester *model.TokenClaims, idOrCode string) (*model.User, error) {
	if requester.Role == model.RolePatient {
		return s.userRepo.Get(ctx, requester.UserID)
	}
	if idOrCode == "" {
		return nil, apperrors.Validation("patient_id is required")
	}
	patient, err := s.userRepo.GetByPatientCode(ctx, idOrCode)
	if err == nil {
		return patient, nil
	}
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	id, parseErr := uuid.Parse(idOrCode)
	if parseErr != nil {
		return nil, apperrors.NotFound("patient")
	}
	patient, err = s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient.Role != model.RolePatient {
		return nil, apperrors.NotFound("patient")
	}
	return patient, nil
}

func (s *Service) notifyPhysicians(ctx context.Context, sourceUserID uuid.UUID, patient *model.User, advice *model.Advice) {
	role := model.RolePhysician
	adviceID := advice.ID
	_, err := s.notifier.Create(ctx, sourceUserID, &model.CreateNotificationRequest{
		Type:            model.NotificationTypeAdviceRequest,
		Title:           "New advice request",
		Message:         fmt.Sprintf("%s submitted an advice request (%s urgency)", patient.FullName, advice.Urgency),
		Urgency:         notificationUrgency(advice.Urgency),
		TargetRole:      &role,
		RelatedEntityID: &adviceID,
	})
	if err != nil {
		log.Warn().Err(err).Str("advice_id", advice.ID.String()).Msg("failed to notify physicians of advice request")
	}
}

func notificationUrgency(u model.Urgency) model.NotificationUrgency {
	switch u {
	case model.UrgencyHigh, model.UrgencyUrgent:
		return model.NotificationUrgencyHigh
	case model.UrgencyLow:
		return model.NotificationUrgencyLow
	default:
		return model.NotificationUrgencyMedium
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) (*model.Advice, error) {
	advice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role == model.RolePatient && advice.PatientID != requester.UserID {
		return nil, apperrors.Forbidden("you may only view your own advice")
	}
	return advice, nil
}

// List returns all advice, optionally filtered by status, urgent first.
func (s *Service) List(ctx context.Context, status model.AdviceStatus) ([]*model.Advice, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.Validation("invalid advice status")
	}
	return s.repo.List(ctx, uuid.Nil, status, "")
}

func (s *Service) ListByUrgency(ctx context.Context, urgency model.Urgency) ([]*model.Advice, error) {
	if !urgency.IsValid() {
		return nil, apperrors.Validation("invalid urgency level")
	}
	return s.repo.List(ctx, uuid.Nil, "", urgency)
}

// ListForPatient returns a patient's full advice history.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Advice, error) {
	return s.repo.List(ctx, patientID, "", "")
}

// Recommendations returns only the approved advice for a patient.
func (s *Service) Recommendations(ctx context.Context, patientID uuid.UUID) ([]*model.Advice, error) {
	return s.repo.List(ctx, patientID, model.AdviceStatusApproved, "")
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*model.Advice, error) {
	return s.decide(ctx, id, model.AdviceStatusApproved)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*model.Advice, error) {
	return s.decide(ctx, id, model.AdviceStatusRejected)
}

// decide moves a pending record to a terminal status. Terminal records
// cannot transition again.
func (s *Service) decide(ctx context.Context, id uuid.UUID, status model.AdviceStatus) (*model.Advice, error) {
	advice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if advice.Status != model.AdviceStatusPending {
		return nil, apperrors.Conflict(fmt.Sprintf("advice has already been %s", advice.Status))
	}
	advice.Status = status
	advice.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// Update edits a pending record. Only the owning patient may edit, and
// only while the record is pending.
func (s *Service) Update(ctx context.Context, id uuid.UUID, requester *model.TokenClaims, req *model.UpdateAdviceRequest) (*model.Advice, error) {
	advice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if advice.PatientID != requester.UserID {
		return nil, apperrors.Forbidden("you may only edit your own advice")
	}
	if advice.Status != model.AdviceStatusPending {
		return nil, apperrors.Conflict("only pending advice can be edited")
	}

	if req.Condition != nil {
		advice.Condition = *req.Condition
	}
	if req.Medications != nil {
		advice.Medications = *req.Medications
	}
	if req.Lifestyle != nil {
		advice.Lifestyle = *req.Lifestyle
	}
	if req.Urgency != nil {
		advice.Urgency = *req.Urgency
	}
	advice.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// Delete removes a record. Admins may delete any record; patients only
// their own.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) error {
	advice, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if requester.Role != model.RoleAdmin && advice.PatientID != requester.UserID {
		return apperrors.Forbidden("you may only delete your own advice")
	}
	return s.repo.Delete(ctx, id)
}
