package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medicore/clinic-api/internal/repository"
)

const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a unique-index violation,
// the storage-level backstop for slot and email/username conflicts.
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

type userRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type adviceRepository struct {
	db *sqlx.DB
}

type reportRepository struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewAdviceRepository(db *sqlx.DB) repository.AdviceRepository {
	return &adviceRepository{db: db}
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}
