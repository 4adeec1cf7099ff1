package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPatientCode(ctx context.Context, code string) (*model.User, error)
	List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*model.UserStats, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error)
	// SlotTaken reports whether a non-cancelled appointment other than
	// excludeID exists for the (physician, date, slot) triple.
	SlotTaken(ctx context.Context, physicianID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error)
	BookedSlots(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]string, error)
	CountForDay(ctx context.Context, day time.Time) (int, error)
}

type AdviceRepository interface {
	Create(ctx context.Context, advice *model.Advice) error
	Get(ctx context.Context, id uuid.UUID) (*model.Advice, error)
	Update(ctx context.Context, advice *model.Advice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID uuid.UUID, status model.AdviceStatus, urgency model.Urgency) ([]*model.Advice, error)
	CountByStatus(ctx context.Context, status model.AdviceStatus) (int, error)
	Recent(ctx context.Context, limit int) ([]*model.Advice, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *model.PatientReport) error
	Get(ctx context.Context, id uuid.UUID) (*model.PatientReport, error)
	List(ctx context.Context, patientID uuid.UUID) ([]*model.PatientReport, error)
	Count(ctx context.Context) (int, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*model.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, role model.Role, filter *model.NotificationFilter) ([]*model.Notification, int, error)
	// MarkRead updates a notification scoped to the requester's identity
	// and returns the updated record, or nil when out of scope or absent.
	MarkRead(ctx context.Context, id, userID uuid.UUID, role model.Role) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, role model.Role) error
	Delete(ctx context.Context, id, userID uuid.UUID, role model.Role) error
}
