package service

import (
	"context"
	"time"

	"betpal/events"
	"betpal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, or nil if no such user exists
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username, or nil if no such user exists
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the initial token balance
	Create(ctx context.Context, username string, initialBalance int64) (*models.User, error)

	// AddBalance credits a user's token balance atomically, returning the
	// balance after the credit
	AddBalance(ctx context.Context, userID int64, amount int64) (int64, error)

	// DeductBalance debits a user's token balance atomically, returning the
	// balance after the debit, or failing with an insufficient-funds error
	// when the balance does not cover the amount
	DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error)

	// IncrementWins increments a user's total_wins counter atomically
	IncrementWins(ctx context.Context, userID int64) error

	// IncrementLosses increments a user's total_losses counter atomically
	IncrementLosses(ctx context.Context, userID int64) error
}

// BetRepository defines the interface for bet and participant data access
type BetRepository interface {
	// Create inserts a new bet row
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by ID, or nil if no such bet exists
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForUpdate retrieves a bet and locks its row for the duration of
	// the transaction, so precondition checks and the mutation that follows
	// are one critical section
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// GetDetailByID retrieves a bet with all its participant rows
	GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error)

	// GetByUser returns bets where the user is the creator or an accepted
	// participant, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.BetDetail, error)

	// MarkActive transitions a pending bet to active. A no-op when the bet is
	// already active; never touches a completed bet.
	MarkActive(ctx context.Context, betID int64) error

	// CompleteBet transitions an active bet to completed with the given
	// winner. Reports false when the bet was not active.
	CompleteBet(ctx context.Context, betID int64, winnerID int64) (bool, error)

	// CreateParticipant inserts an invited participant row. Inserting a
	// duplicate (bet_id, participant_id) pair fails with a state conflict.
	CreateParticipant(ctx context.Context, p *models.BetParticipant) error

	// GetParticipant retrieves a participant row, or nil if none exists
	GetParticipant(ctx context.Context, betID, participantID int64) (*models.BetParticipant, error)

	// UpdateParticipantStatus transitions a participant from one status to
	// another. Reports false when no row was in the expected status, leaving
	// classification of the failure to the caller.
	UpdateParticipantStatus(ctx context.Context, betID, participantID int64, from, to models.ParticipantStatus) (bool, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create inserts a notification record
	Create(ctx context.Context, n *models.Notification) error

	// GetByUser returns a user's notifications, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error)

	// MarkAsRead flips the read flag to true. Idempotent: marking an already
	// read notification is a no-op. Fails only when the id does not exist.
	MarkAsRead(ctx context.Context, id int64) error
}

// FriendshipRepository defines the interface for friendship data access
type FriendshipRepository interface {
	// Create inserts a friendship edge. Inserting a second edge for the same
	// unordered pair fails with a state conflict.
	Create(ctx context.Context, f *models.Friendship) error

	// GetByID retrieves a friendship by ID, or nil if none exists
	GetByID(ctx context.Context, id int64) (*models.Friendship, error)

	// GetBetweenUsers retrieves the edge between two users in either
	// direction and any status, or nil if none exists
	GetBetweenUsers(ctx context.Context, userA, userB int64) (*models.Friendship, error)

	// UpdateStatus transitions a friendship from one status to another.
	// Reports false when the row was not in the expected status.
	UpdateStatus(ctx context.Context, id int64, from, to models.FriendshipStatus) (bool, error)

	// Delete removes a friendship edge
	Delete(ctx context.Context, id int64) error

	// GetAcceptedByUser returns accepted edges touching the user, either direction
	GetAcceptedByUser(ctx context.Context, userID int64) ([]*models.Friendship, error)

	// GetPendingReceived returns pending requests where the user is the target
	GetPendingReceived(ctx context.Context, userID int64) ([]*models.Friendship, error)

	// GetPendingSent returns pending requests the user initiated
	GetPendingSent(ctx context.Context, userID int64) ([]*models.Friendship, error)
}

// TokenLedgerRepository defines the interface for the append-only token ledger
type TokenLedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.TokenLedgerEntry) error

	// GetByUser returns ledger entries for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.TokenLedgerEntry, error)
}

// CreateBetParams carries the inputs for creating a bet
type CreateBetParams struct {
	Title                string
	Description          string
	Stake                int64
	Deadline             time.Time
	ResolutionType       models.ResolutionType
	JudgeID              *int64
	ParticipantUsernames []string
}

// BetService defines the interface for the bet lifecycle and settlement engine
type BetService interface {
	// CreateBet creates a pending bet, escrows the creator's stake, and
	// invites the named participants
	CreateBet(ctx context.Context, creatorID int64, params CreateBetParams) (*models.BetDetail, error)

	// JoinBet accepts an invitation, escrowing the caller's stake and
	// activating the bet
	JoinBet(ctx context.Context, userID, betID int64) (*models.Bet, error)

	// RespondToInvitation accepts or rejects an invitation to a pending bet
	RespondToInvitation(ctx context.Context, userID, betID int64, accept bool) (*models.Bet, error)

	// ResolveBet completes an active bet, paying the full pot to the winner
	ResolveBet(ctx context.Context, actingUserID, betID, winnerID int64) (*models.BetResult, error)

	// InviteParticipant invites another user to an existing bet
	InviteParticipant(ctx context.Context, inviterID, betID int64, targetUsername string) (*models.BetParticipant, error)

	// GetBetDetail retrieves a bet with its participants
	GetBetDetail(ctx context.Context, betID int64) (*models.BetDetail, error)

	// GetBetsByUser returns bets the user created or accepted into
	GetBetsByUser(ctx context.Context, userID int64) ([]*models.BetDetail, error)
}

// FriendService defines the interface for friendship operations
type FriendService interface {
	// AddFriend sends a friend request to the named user
	AddFriend(ctx context.Context, requesterID int64, targetUsername string) (*models.Friendship, error)

	// AcceptFriendRequest accepts a pending request addressed to the actor
	AcceptFriendRequest(ctx context.Context, actingUserID, friendshipID int64) (*models.Friendship, error)

	// RejectFriendRequest rejects a pending request addressed to the actor
	RejectFriendRequest(ctx context.Context, actingUserID, friendshipID int64) error

	// RemoveFriend deletes a friendship the actor is part of
	RemoveFriend(ctx context.Context, actingUserID, friendshipID int64) error

	// GetFriends returns the actor's friendships grouped by direction and state
	GetFriends(ctx context.Context, userID int64) (*models.FriendList, error)
}

// NotificationService defines the interface for notification reads
type NotificationService interface {
	// GetUserNotifications returns the user's notifications, newest first
	GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error)

	// MarkNotificationAsRead flips the read flag; idempotent
	MarkNotificationAsRead(ctx context.Context, notificationID int64) error
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user by username or creates a new
	// one with the starting balance
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves a user by ID
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BetRepository() BetRepository
	NotificationRepository() NotificationRepository
	FriendshipRepository() FriendshipRepository
	TokenLedgerRepository() TokenLedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
