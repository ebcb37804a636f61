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

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, username, token_balance, total_wins, total_losses, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.TokenBalance,
		&user.TotalWins,
		&user.TotalLosses,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get user %d", id)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get user %q", username)
	}

	return user, nil
}

// Create creates a new user with the initial token balance
func (r *UserRepository) Create(ctx context.Context, username string, initialBalance int64) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (username, token_balance)
		VALUES ($1, $2)
		RETURNING %s
	`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, username, initialBalance))
	if err != nil {
		return nil, translateError(err, "failed to create user %q", username)
	}

	return user, nil
}

// AddBalance credits a user's token balance atomically and returns the
// balance after the credit.
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET token_balance = token_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING token_balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, service.NewNotFoundError("user %d not found", userID)
	}
	if err != nil {
		return 0, translateError(err, "failed to add balance for user %d", userID)
	}

	return balance, nil
}

// DeductBalance debits a user's token balance atomically and returns the
// balance after the debit. The balance guard is part of the UPDATE itself,
// so two concurrent debits can never both succeed against the same tokens.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET token_balance = token_balance - $1, updated_at = NOW()
		WHERE id = $2 AND token_balance >= $1
		RETURNING token_balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing user from insufficient funds
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return 0, service.NewNotFoundError("user %d not found", userID)
		}
		return 0, service.NewInsufficientFundsError("insufficient tokens: have %d, need %d", user.TokenBalance, amount)
	}
	if err != nil {
		return 0, translateError(err, "failed to deduct balance for user %d", userID)
	}

	return balance, nil
}

// IncrementWins increments a user's total_wins counter atomically
func (r *UserRepository) IncrementWins(ctx context.Context, userID int64) error {
	return r.incrementCounter(ctx, userID, "total_wins")
}

// IncrementLosses increments a user's total_losses counter atomically
func (r *UserRepository) IncrementLosses(ctx context.Context, userID int64) error {
	return r.incrementCounter(ctx, userID, "total_losses")
}

func (r *UserRepository) incrementCounter(ctx context.Context, userID int64, column string) error {
	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + 1, updated_at = NOW()
		WHERE id = $1
	`, column, column)

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return translateError(err, "failed to increment %s for user %d", column, userID)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("user %d not found", userID)
	}

	return nil
}
