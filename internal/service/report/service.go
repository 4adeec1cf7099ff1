package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

type Service struct {
	repo     repository.ReportRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.ReportRepository, userRepo repository.UserRepository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Create appends a clinical report for the patient identified by
// patient code, falling back to the internal id.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientReportRequest) (*model.PatientReport, error) {
	patient, err := s.resolvePatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.AccountStatus != model.AccountStatusActive {
		return nil, apperrors.Forbidden("patient account is not active")
	}

	report := &model.PatientReport{
		Base:         model.Base{ID: uuid.New()},
		PatientID:    patient.ID,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		FollowUpDate: req.FollowUpDate,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) resolvePatient(ctx context.Context, idOrCode string) (*model.User, error) {
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

func (s *Service) Get(ctx context.Context, id uuid.UUID, requester *model.TokenClaims) (*model.PatientReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role == model.RolePatient && report.PatientID != requester.UserID {
		return nil, apperrors.Forbidden("you may only view your own reports")
	}
	return report, nil
}

// List returns all reports, or a single patient's when patientID is
// non-nil.
func (s *Service) List(ctx context.Context, patientID uuid.UUID) ([]*model.PatientReport, error) {
	return s.repo.List(ctx, patientID)
}

// ListForPatient returns the requester's own reports.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientReport, error) {
	return s.repo.List(ctx, patientID)
}
