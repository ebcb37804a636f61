package models

import (
	"time"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusActive    BetStatus = "active"
	BetStatusCompleted BetStatus = "completed"
)

// ResolutionType represents how the winner of a bet is determined
type ResolutionType string

const (
	ResolutionTypeSelf  ResolutionType = "self"
	ResolutionTypeJudge ResolutionType = "judge"
)

// Bet represents a wager between a creator and invited participants.
// The creator's stake is escrowed at creation; each participant's stake is
// escrowed when they accept.
type Bet struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Stake          int64          `db:"stake"`
	Deadline       time.Time      `db:"deadline"`
	Status         BetStatus      `db:"status"`
	ResolutionType ResolutionType `db:"resolution_type"`
	CreatedBy      int64          `db:"created_by"`
	JudgeID        *int64         `db:"judge_id"`
	WinnerID       *int64         `db:"winner_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// IsPending checks if the bet is still waiting for its first acceptance
func (b *Bet) IsPending() bool {
	return b.Status == BetStatusPending
}

// IsActive checks if the bet has at least one accepted participant
func (b *Bet) IsActive() bool {
	return b.Status == BetStatusActive
}

// IsCompleted checks if the bet has been resolved. Completed is terminal.
func (b *Bet) IsCompleted() bool {
	return b.Status == BetStatusCompleted
}

// RequiresJudge checks if the bet is resolved by a designated judge
func (b *Bet) RequiresJudge() bool {
	return b.ResolutionType == ResolutionTypeJudge
}

// IsJudge checks if the given user is the designated judge
func (b *Bet) IsJudge(userID int64) bool {
	return b.JudgeID != nil && *b.JudgeID == userID
}
