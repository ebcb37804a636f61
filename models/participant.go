package models

import (
	"time"
)

// ParticipantStatus represents the state of a bet invitation
type ParticipantStatus string

const (
	ParticipantStatusInvited  ParticipantStatus = "invited"
	ParticipantStatusAccepted ParticipantStatus = "accepted"
	ParticipantStatusRejected ParticipantStatus = "rejected"
)

// BetParticipant represents a user invited to a bet. An accepted participant
// has had the stake escrowed from their balance; a rejected participant never
// did. Rejected is terminal.
type BetParticipant struct {
	ID            int64             `db:"id"`
	BetID         int64             `db:"bet_id"`
	ParticipantID int64             `db:"participant_id"`
	Status        ParticipantStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

// BetDetail combines a bet with its participant rows
type BetDetail struct {
	Bet          *Bet
	Participants []*BetParticipant
}

// AcceptedParticipants returns the participants that have accepted
func (d *BetDetail) AcceptedParticipants() []*BetParticipant {
	var accepted []*BetParticipant
	for _, p := range d.Participants {
		if p.Status == ParticipantStatusAccepted {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// StakeholderIDs returns the creator plus every accepted participant.
// The creator is always a stakeholder: their stake is escrowed at creation.
func (d *BetDetail) StakeholderIDs() []int64 {
	ids := []int64{d.Bet.CreatedBy}
	for _, p := range d.AcceptedParticipants() {
		ids = append(ids, p.ParticipantID)
	}
	return ids
}

// IsStakeholder checks if the user is the creator or an accepted participant
func (d *BetDetail) IsStakeholder(userID int64) bool {
	for _, id := range d.StakeholderIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// HasParticipant checks if a participant row exists for the user in any state
func (d *BetDetail) HasParticipant(userID int64) bool {
	for _, p := range d.Participants {
		if p.ParticipantID == userID {
			return true
		}
	}
	return false
}

// BetResult represents the outcome of resolving a bet
type BetResult struct {
	Bet               *Bet
	WinnerID          int64
	TotalStakeholders int
	TotalWinnings     int64
	LoserIDs          []int64
}
