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

const userColumns = `id, full_name, username, email, password_hash, role, account_status,
	patient_code, age, condition, last_visit, patient_status, phone, address,
	created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, full_name, username, email, password_hash, role, account_status,
			patient_code, age, condition, last_visit, patient_status, phone, address,
			created_at, updated_at
		) VALUES (
			:id, :full_name, :username, :email, :password_hash, :role, :account_status,
			:patient_code, :age, :condition, :last_visit, :patient_status, :phone, :address,
			:created_at, :updated_at
		)
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email or username already in use")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = lower($1)`, userColumns)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByPatientCode(ctx context.Context, code string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE patient_code = $1 AND role = 'patient'`, userColumns)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, fmt.Errorf("failed to get user by patient code: %w", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (full_name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)",
			argCount, argCount, argCount)
		args = append(args, "%"+filter.Search+"%")
		argCount++
	}
	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", argCount)
		args = append(args, filter.Role)
		argCount++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND account_status = $%d", argCount)
		args = append(args, filter.Status)
		argCount++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT count(*) FROM users "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, argCount, argCount+1)
	args = append(args, filter.PageSize, filter.Offset())

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 ORDER BY created_at DESC`, userColumns)

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			full_name = :full_name, username = :username, email = :email,
			password_hash = :password_hash, role = :role, account_status = :account_status,
			patient_code = :patient_code, age = :age, condition = :condition,
			last_visit = :last_visit, patient_status = :patient_status,
			phone = :phone, address = :address, updated_at = :updated_at
		WHERE id = :id
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email or username already in use")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context) (*model.UserStats, error) {
	query := `
		SELECT
			count(*) AS total,
			count(*) FILTER (WHERE account_status = 'active') AS active,
			count(*) FILTER (WHERE role = 'admin') AS admins,
			count(*) FILTER (WHERE role = 'physician') AS physicians,
			count(*) FILTER (WHERE role = 'patient') AS patients
		FROM users
	`
	var row struct {
		Total      int `db:"total"`
		Active     int `db:"active"`
		Admins     int `db:"admins"`
		Physicians int `db:"physicians"`
		Patients   int `db:"patients"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &model.UserStats{
		TotalUsers:        row.Total,
		ActivatedAccounts: row.Active,
		TotalAdmins:       row.Admins,
		TotalPhysicians:   row.Physicians,
		TotalPatients:     row.Patients,
		RoleDistribution: map[model.Role]int{
			model.RoleAdmin:     row.Admins,
			model.RolePhysician: row.Physicians,
			model.RolePatient:   row.Patients,
		},
	}, nil
}
