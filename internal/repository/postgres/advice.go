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

const adviceColumns = `a.id, a.patient_id, a.condition, a.medications, a.lifestyle,
	a.urgency, a.status, a.created_at, a.updated_at,
	u.full_name AS patient_name, u.patient_code`

const adviceJoins = `FROM advice a JOIN users u ON u.id = a.patient_id`

func (r *adviceRepository) Create(ctx context.Context, advice *model.Advice) error {
	query := `
		INSERT INTO advice (
			id, patient_id, condition, medications, lifestyle,
			urgency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	advice.CreatedAt = time.Now()
	advice.UpdatedAt = advice.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		advice.ID,
		advice.PatientID,
		advice.Condition,
		advice.Medications,
		advice.Lifestyle,
		advice.Urgency,
		advice.Status,
		advice.CreatedAt,
		advice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create advice: %w", err)
	}
	return nil
}

func (r *adviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Advice, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1`, adviceColumns, adviceJoins)

	var advice model.Advice
	if err := r.db.GetContext(ctx, &advice, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("advice request")
		}
		return nil, fmt.Errorf("failed to get advice: %w", err)
	}
	return &advice, nil
}

func (r *adviceRepository) Update(ctx context.Context, advice *model.Advice) error {
	query := `
		UPDATE advice
		SET condition = $1, medications = $2, lifestyle = $3,
			urgency = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	advice.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		advice.Condition,
		advice.Medications,
		advice.Lifestyle,
		advice.Urgency,
		advice.Status,
		advice.UpdatedAt,
		advice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update advice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("advice request")
	}
	return nil
}

func (r *adviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM advice WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete advice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("advice request")
	}
	return nil
}

func (r *adviceRepository) List(ctx context.Context, patientID uuid.UUID, status model.AdviceStatus, urgency model.Urgency) ([]*model.Advice, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE 1=1`, adviceColumns, adviceJoins)
	args := []interface{}{}
	argCount := 1

	if patientID != uuid.Nil {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
		args = append(args, patientID)
		argCount++
	}
	if status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, status)
		argCount++
	}
	if urgency != "" {
		query += fmt.Sprintf(" AND a.urgency = $%d", argCount)
		args = append(args, urgency)
		argCount++
	}

	// Urgent first, then most recent, matching the triage view.
	query += ` ORDER BY CASE a.urgency
			WHEN 'Urgent' THEN 0
			WHEN 'High' THEN 1
			WHEN 'Normal' THEN 2
			ELSE 3
		END, a.created_at DESC`

	var advice []*model.Advice
	if err := r.db.SelectContext(ctx, &advice, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list advice: %w", err)
	}
	return advice, nil
}

func (r *adviceRepository) CountByStatus(ctx context.Context, status model.AdviceStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM advice WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("failed to count advice: %w", err)
	}
	return count, nil
}

func (r *adviceRepository) Recent(ctx context.Context, limit int) ([]*model.Advice, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY a.updated_at DESC LIMIT $1`, adviceColumns, adviceJoins)

	var advice []*model.Advice
	if err := r.db.SelectContext(ctx, &advice, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent advice: %w", err)
	}
	return advice, nil
}
