package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/model"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
)

const notificationColumns = `id, type, title, message, urgency, status, target_role,
	target_user_id, source_user_id, related_entity_id, metadata, created_at, read_at`

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (
			id, type, title, message, urgency, status, target_role,
			target_user_id, source_user_id, related_entity_id, metadata, created_at
		) VALUES (
			:id, :type, :title, :message, :urgency, :status, :target_role,
			:target_user_id, :source_user_id, :related_entity_id, :metadata, :created_at
		)
	`
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range notifications {
		if _, err := tx.NamedExecContext(ctx, query, n); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, role model.Role, filter *model.NotificationFilter) ([]*model.Notification, int, error) {
	where := "WHERE (target_user_id = $1 OR target_role = $2)"
	args := []interface{}{userID, role}
	argCount := 3

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filter.Status)
		argCount++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT count(*) FROM notifications "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		notificationColumns, where, argCount, argCount+1)
	args = append(args, filter.PageSize, filter.Offset())

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, role model.Role) (*model.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE notifications
		SET status = 'read', read_at = now()
		WHERE id = $1 AND (target_user_id = $2 OR target_role = $3)
		RETURNING %s
	`, notificationColumns)

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id, userID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("notification")
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, role model.Role) error {
	query := `
		UPDATE notifications
		SET status = 'read', read_at = now()
		WHERE (target_user_id = $1 OR target_role = $2) AND status = 'unread'
	`
	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID uuid.UUID, role model.Role) error {
	query := `DELETE FROM notifications WHERE id = $1 AND (target_user_id = $2 OR target_role = $3)`

	result, err := r.db.ExecContext(ctx, query, id, userID, role)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification")
	}
	return nil
}
