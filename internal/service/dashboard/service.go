package dashboard

import (
	"context"
	"time"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/repository"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

const recentActivityLimit = 3

type Service struct {
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	adviceRepo      repository.AdviceRepository
	reportRepo      repository.ReportRepository
}

func NewService(userRepo repository.UserRepository, appointmentRepo repository.AppointmentRepository,
	adviceRepo repository.AdviceRepository, reportRepo repository.ReportRepository) *Service {
	return &Service{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		adviceRepo:      adviceRepo,
		reportRepo:      reportRepo,
	}
}

// AdminStats returns the account counters for the admin dashboard.
// Counts reflect current store state; nothing is cached.
func (s *Service) AdminStats(ctx context.Context) (*model.UserStats, error) {
	return s.userRepo.Stats(ctx)
}

// PhysicianStats returns the workload counters for the physician
// dashboard.
func (s *Service) PhysicianStats(ctx context.Context) (*model.PhysicianStats, error) {
	userStats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	appointments, err := s.appointmentRepo.CountForDay(ctx, today)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	reports, err := s.reportRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	pending, err := s.adviceRepo.CountByStatus(ctx, model.AdviceStatusPending)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	recent, err := s.adviceRepo.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.PhysicianStats{
		TotalPatients:          userStats.TotalPatients,
		TodaysAppointments:     appointments,
		PendingReports:         reports,
		PendingRecommendations: pending,
		RecentActivity:         recent,
	}, nil
}
