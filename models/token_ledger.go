package models

import (
	"time"
)

// TransactionType represents the type of token balance change
type TransactionType string

const (
	TransactionTypeInitial   TransactionType = "initial"
	TransactionTypeBetEscrow TransactionType = "bet_escrow"
	TransactionTypeBetPayout TransactionType = "bet_payout"
)

// TokenLedgerEntry is an append-only record of a token balance change
type TokenLedgerEntry struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	BetID               *int64          `db:"bet_id"`
	CreatedAt           time.Time       `db:"created_at"`
}
