package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"betpal/database"
	"betpal/models"
)

// TokenLedgerRepository implements the service.TokenLedgerRepository interface
type TokenLedgerRepository struct {
	q queryable
}

// NewTokenLedgerRepository creates a new token ledger repository
func NewTokenLedgerRepository(db *database.DB) *TokenLedgerRepository {
	return &TokenLedgerRepository{q: db.Pool}
}

// newTokenLedgerRepositoryWithTx creates a new token ledger repository with a transaction
func newTokenLedgerRepositoryWithTx(tx queryable) *TokenLedgerRepository {
	return &TokenLedgerRepository{q: tx}
}

// Record creates a new ledger entry
func (r *TokenLedgerRepository) Record(ctx context.Context, entry *models.TokenLedgerEntry) error {
	metadataJSON, err := json.Marshal(entry.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO token_ledger
		(user_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, bet_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.TransactionType,
		metadataJSON,
		entry.BetID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return translateError(err, "failed to record ledger entry for user %d", entry.UserID)
	}

	return nil
}

// GetByUser returns ledger entries for a user, newest first
func (r *TokenLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.TokenLedgerEntry, error) {
	query := `
		SELECT id, user_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, bet_id, created_at
		FROM token_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, translateError(err, "failed to get ledger entries for user %d", userID)
	}
	defer rows.Close()

	var entries []*models.TokenLedgerEntry
	for rows.Next() {
		var entry models.TokenLedgerEntry
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadataJSON,
			&entry.BetID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate ledger entries for user %d", userID)
	}

	return entries, nil
}
