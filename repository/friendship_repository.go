package repository

import (
	"context"
	"errors"
	"fmt"

	"betpal/database"
	"betpal/models"
	"betpal/service"

	"github.com/jackc/pgx/v5"
)

// FriendshipRepository implements the service.FriendshipRepository interface
type FriendshipRepository struct {
	q queryable
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *database.DB) *FriendshipRepository {
	return &FriendshipRepository{q: db.Pool}
}

// newFriendshipRepositoryWithTx creates a new friendship repository with a transaction
func newFriendshipRepositoryWithTx(tx queryable) *FriendshipRepository {
	return &FriendshipRepository{q: tx}
}

const friendshipColumns = `id, user_id, friend_id, status, created_at, updated_at`

func scanFriendship(row pgx.Row) (*models.Friendship, error) {
	var f models.Friendship
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.FriendID,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a friendship edge. The unordered-pair unique index turns a
// racing duplicate insert into a state conflict instead of a second row.
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, f.UserID, f.FriendID, f.Status).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return translateError(err, "failed to create friendship between %d and %d", f.UserID, f.FriendID)
	}

	return nil
}

// GetByID retrieves a friendship by ID
func (r *FriendshipRepository) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	query := fmt.Sprintf(`SELECT %s FROM friendships WHERE id = $1`, friendshipColumns)

	f, err := scanFriendship(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get friendship %d", id)
	}

	return f, nil
}

// GetBetweenUsers retrieves the edge between two users in either direction
func (r *FriendshipRepository) GetBetweenUsers(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM friendships
		WHERE (user_id = $1 AND friend_id = $2)
		   OR (user_id = $2 AND friend_id = $1)
	`, friendshipColumns)

	f, err := scanFriendship(r.q.QueryRow(ctx, query, userA, userB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get friendship between %d and %d", userA, userB)
	}

	return f, nil
}

// UpdateStatus transitions a friendship between statuses, guarded on the
// expected current status
func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id int64, from, to models.FriendshipStatus) (bool, error) {
	query := `
		UPDATE friendships
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, translateError(err, "failed to update friendship %d", id)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes a friendship edge
func (r *FriendshipRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "failed to delete friendship %d", id)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("friendship %d not found", id)
	}

	return nil
}

// GetAcceptedByUser returns accepted edges touching the user, either direction
func (r *FriendshipRepository) GetAcceptedByUser(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM friendships
		WHERE (user_id = $1 OR friend_id = $1) AND status = 'accepted'
		ORDER BY created_at DESC
	`, friendshipColumns)

	return r.queryFriendships(ctx, query, userID)
}

// GetPendingReceived returns pending requests where the user is the target
func (r *FriendshipRepository) GetPendingReceived(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM friendships
		WHERE friend_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, friendshipColumns)

	return r.queryFriendships(ctx, query, userID)
}

// GetPendingSent returns pending requests the user initiated
func (r *FriendshipRepository) GetPendingSent(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM friendships
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, friendshipColumns)

	return r.queryFriendships(ctx, query, userID)
}

func (r *FriendshipRepository) queryFriendships(ctx context.Context, query string, userID int64) ([]*models.Friendship, error) {
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, translateError(err, "failed to get friendships for user %d", userID)
	}
	defer rows.Close()

	var friendships []*models.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate friendships for user %d", userID)
	}

	return friendships, nil
}
