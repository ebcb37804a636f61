package models

import (
	"time"
)

// User represents a user profile with a token balance and win/loss record.
// Identity (login, sessions) is owned by the external identity provider; the
// engine only reads and mutates the balance and the counters.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	TokenBalance int64     `db:"token_balance"`
	TotalWins    int64     `db:"total_wins"`
	TotalLosses  int64     `db:"total_losses"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
