package models

import (
	"time"
)

// NotificationType represents the kind of event a notification records
type NotificationType string

const (
	NotificationTypeBetInvite      NotificationType = "bet_invite"
	NotificationTypeBetAccepted    NotificationType = "bet_accepted"
	NotificationTypeBetCompleted   NotificationType = "bet_completed"
	NotificationTypeBetRejected    NotificationType = "bet_rejected"
	NotificationTypeTokensReceived NotificationType = "tokens_received"
	NotificationTypeFriendRequest  NotificationType = "friend_request"
	NotificationTypeFriendAccepted NotificationType = "friend_accepted"
)

// Notification is an append-only record produced by engine state transitions.
// Only the read flag ever changes, and only from false to true.
type Notification struct {
	ID           int64            `db:"id"`
	UserID       int64            `db:"user_id"`
	Message      string           `db:"message"`
	Type         NotificationType `db:"type"`
	Read         bool             `db:"read"`
	BetID        *int64           `db:"bet_id"`
	FriendshipID *int64           `db:"friendship_id"`
	CreatedAt    time.Time        `db:"created_at"`
}
