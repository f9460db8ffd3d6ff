package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

const notificationColumns = `id, user_id, title, message, is_read, created_at`

// NotificationRepository persists user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an unread notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (user_id, title, message, is_read) VALUES ($1, $2, $3, FALSE) RETURNING ` + notificationColumns
	if err := r.db.GetContext(ctx, n, query, n.UserID, n.Title, n.Message); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// CreateBatch inserts one unread notification per user inside a transaction.
func (r *NotificationRepository) CreateBatch(ctx context.Context, userIDs []int64, title, message string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin notification batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO notifications (user_id, title, message, is_read) VALUES ($1, $2, $3, FALSE)`
	for _, id := range userIDs {
		if _, err := tx.ExecContext(ctx, query, id, title, message); err != nil {
			return 0, fmt.Errorf("insert batch notification for user %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit notification batch: %w", err)
	}
	committed = true
	return len(userIDs), nil
}

// ListByUser returns the user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	items := make([]models.Notification, 0)
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags a notification as read and returns it.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING ` + notificationColumns
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}
