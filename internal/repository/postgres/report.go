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

const reportColumns = `r.id, r.patient_id, r.diagnosis, r.treatment, r.prescription,
	r.follow_up_date, r.notes, r.created_at, r.updated_at,
	u.full_name AS patient_name, u.patient_code`

const reportJoins = `FROM patient_reports r JOIN users u ON u.id = r.patient_id`

func (r *reportRepository) Create(ctx context.Context, report *model.PatientReport) error {
	query := `
		INSERT INTO patient_reports (
			id, patient_id, diagnosis, treatment, prescription,
			follow_up_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.PatientID,
		report.Diagnosis,
		report.Treatment,
		report.Prescription,
		report.FollowUpDate,
		report.Notes,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientReport, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1`, reportColumns, reportJoins)

	var report model.PatientReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("report")
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, patientID uuid.UUID) ([]*model.PatientReport, error) {
	query := fmt.Sprintf(`SELECT %s %s`, reportColumns, reportJoins)
	args := []interface{}{}

	if patientID != uuid.Nil {
		query += " WHERE r.patient_id = $1"
		args = append(args, patientID)
	}
	query += " ORDER BY r.created_at DESC"

	var reports []*model.PatientReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM patient_reports`); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
