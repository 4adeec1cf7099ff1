package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

const appointmentColumns = `a.id, a.patient_id, a.physician_id, a.department, a.appointment_date,
	a.time_slot, a.reason, a.status, a.created_at, a.updated_at,
	p.full_name AS patient_name, d.full_name AS physician_name`

const appointmentJoins = `FROM appointments a
	JOIN users p ON p.id = a.patient_id
	JOIN users d ON d.id = a.physician_id`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, physician_id, department, appointment_date,
			time_slot, reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.PhysicianID,
		apt.Department,
		apt.Date,
		apt.TimeSlot,
		apt.Reason,
		apt.Status,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on (physician, date, slot) is the
		// authoritative guard against concurrent double-booking.
		if isUniqueViolation(err) {
			return apperrors.Conflict("this time slot is already booked")
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1`, appointmentColumns, appointmentJoins)

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET appointment_date = $1, time_slot = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		apt.Date,
		apt.TimeSlot,
		apt.Status,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("this time slot is already booked")
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE 1=1`, appointmentColumns, appointmentJoins)
	args := []interface{}{}
	argCount := 1

	if filter.PhysicianID != uuid.Nil {
		query += fmt.Sprintf(" AND a.physician_id = $%d", argCount)
		args = append(args, filter.PhysicianID)
		argCount++
	}
	if filter.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
		args = append(args, filter.PatientID)
		argCount++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filter.Status)
		argCount++
	}

	query += " ORDER BY a.appointment_date ASC, a.time_slot ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, physicianID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE physician_id = $1
			AND appointment_date = $2
			AND time_slot = $3
			AND status <> 'cancelled'
	`
	args := []interface{}{physicianID, date, slot}

	if excludeID != nil {
		query += " AND id <> $4"
		args = append(args, *excludeID)
	}
	query += ")"

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, args...); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]string, error) {
	query := `
		SELECT time_slot FROM appointments
		WHERE physician_id = $1
		AND appointment_date = $2
		AND status <> 'cancelled'
		ORDER BY time_slot ASC
	`
	var slots []string
	if err := r.db.SelectContext(ctx, &slots, query, physicianID, date); err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	return slots, nil
}

func (r *appointmentRepository) CountForDay(ctx context.Context, day time.Time) (int, error) {
	var count int
	query := `SELECT count(*) FROM appointments WHERE appointment_date = $1`
	if err := r.db.GetContext(ctx, &count, query, day); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
