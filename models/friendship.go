package models

import (
	"time"
)

// FriendshipStatus represents the state of a friendship edge
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusRejected FriendshipStatus = "rejected"
)

// Friendship is a directional edge between two users: UserID is the requester,
// FriendID the target. At most one row exists per unordered pair.
type Friendship struct {
	ID        int64            `db:"id"`
	UserID    int64            `db:"user_id"`
	FriendID  int64            `db:"friend_id"`
	Status    FriendshipStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// Involves checks if the user is on either end of the edge
func (f *Friendship) Involves(userID int64) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other returns the opposite end of the edge for a given user
func (f *Friendship) Other(userID int64) int64 {
	if f.UserID == userID {
		return f.FriendID
	}
	if f.FriendID == userID {
		return f.UserID
	}
	return 0 // Not on the edge
}

// FriendList groups a user's friendships by direction and state
type FriendList struct {
	Friends         []*Friendship
	PendingRequests []*Friendship
	SentRequests    []*Friendship
}
