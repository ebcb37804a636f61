package repository

import (
	"context"
	"fmt"

	"betpal/database"
	"betpal/models"
	"betpal/service"
)

// NotificationRepository implements the service.NotificationRepository interface
type NotificationRepository struct {
	q queryable
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db.Pool}
}

// newNotificationRepositoryWithTx creates a new notification repository with a transaction
func newNotificationRepositoryWithTx(tx queryable) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// Create inserts a notification record
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, type, read, bet_id, friendship_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		n.UserID,
		n.Message,
		n.Type,
		n.Read,
		n.BetID,
		n.FriendshipID,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return translateError(err, "failed to create notification for user %d", n.UserID)
	}

	return nil
}

// GetByUser returns a user's notifications, newest first
func (r *NotificationRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, message, type, read, bet_id, friendship_id, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, translateError(err, "failed to get notifications for user %d", userID)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Message,
			&n.Type,
			&n.Read,
			&n.BetID,
			&n.FriendshipID,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate notifications for user %d", userID)
	}

	return notifications, nil
}

// MarkAsRead flips the read flag to true. The update matches the row
// regardless of its current read value, so marking twice affects one row
// both times and never errors.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return translateError(err, "failed to mark notification %d as read", id)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("notification %d not found", id)
	}

	return nil
}
