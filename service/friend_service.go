package service

import (
	"context"
	"fmt"

	"betpal/models"
)

type friendService struct {
	uowFactory UnitOfWorkFactory
}

// NewFriendService creates a new friendship service
func NewFriendService(uowFactory UnitOfWorkFactory) FriendService {
	return &friendService{uowFactory: uowFactory}
}

// AddFriend sends a friend request to the named user. At most one edge exists
// per unordered pair: a request in either direction, in any state, blocks a
// second one.
func (s *friendService) AddFriend(ctx context.Context, requesterID int64, targetUsername string) (*models.Friendship, error) {
	var friendship *models.Friendship
	err := withRetry(ctx, func() error {
		var err error
		friendship, err = s.addFriend(ctx, requesterID, targetUsername)
		return err
	})
	return friendship, err
}

func (s *friendService) addFriend(ctx context.Context, requesterID int64, targetUsername string) (*models.Friendship, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	requester, err := uow.UserRepository().GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}
	if requester == nil {
		return nil, NewNotFoundError("requester not found")
	}

	target, err := uow.UserRepository().GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target: %w", err)
	}
	if target == nil {
		return nil, NewNotFoundError("user %q not found", targetUsername)
	}
	if target.ID == requesterID {
		return nil, NewValidationError("you cannot add yourself as a friend")
	}

	existing, err := uow.FriendshipRepository().GetBetweenUsers(ctx, requesterID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendshipStatusAccepted:
			return nil, NewStateConflictError("you are already friends with %s", target.Username)
		default:
			return nil, NewStateConflictError("a friend request already exists with %s", target.Username)
		}
	}

	// The unique pair index backs this up if two requests race past the check
	friendship := &models.Friendship{
		UserID:   requesterID,
		FriendID: target.ID,
		Status:   models.FriendshipStatusPending,
	}
	if err := uow.FriendshipRepository().Create(ctx, friendship); err != nil {
		return nil, err
	}

	queueNotification(uow, &models.Notification{
		UserID:       target.ID,
		Message:      fmt.Sprintf("%s sent you a friend request", requester.Username),
		Type:         models.NotificationTypeFriendRequest,
		FriendshipID: &friendship.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return friendship, nil
}

// AcceptFriendRequest accepts a pending request. Only the target of the
// request can accept it.
func (s *friendService) AcceptFriendRequest(ctx context.Context, actingUserID, friendshipID int64) (*models.Friendship, error) {
	var friendship *models.Friendship
	err := withRetry(ctx, func() error {
		var err error
		friendship, err = s.acceptFriendRequest(ctx, actingUserID, friendshipID)
		return err
	})
	return friendship, err
}

func (s *friendService) acceptFriendRequest(ctx context.Context, actingUserID, friendshipID int64) (*models.Friendship, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	friendship, err := uow.FriendshipRepository().GetByID(ctx, friendshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	if friendship == nil {
		return nil, NewNotFoundError("friend request not found")
	}
	if friendship.FriendID != actingUserID {
		return nil, NewAuthorizationError("only the request's target can accept it")
	}

	updated, err := uow.FriendshipRepository().UpdateStatus(ctx, friendshipID,
		models.FriendshipStatusPending, models.FriendshipStatusAccepted)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, NewStateConflictError("this friend request is no longer pending")
	}
	friendship.Status = models.FriendshipStatusAccepted

	accepter, err := uow.UserRepository().GetByID(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepter: %w", err)
	}
	if accepter == nil {
		return nil, NewNotFoundError("user not found")
	}

	queueNotification(uow, &models.Notification{
		UserID:       friendship.UserID,
		Message:      fmt.Sprintf("%s accepted your friend request", accepter.Username),
		Type:         models.NotificationTypeFriendAccepted,
		FriendshipID: &friendship.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return friendship, nil
}

// RejectFriendRequest rejects a pending request. Only the target of the
// request can reject it. Rejection produces no notification.
func (s *friendService) RejectFriendRequest(ctx context.Context, actingUserID, friendshipID int64) error {
	return withRetry(ctx, func() error {
		return s.rejectFriendRequest(ctx, actingUserID, friendshipID)
	})
}

func (s *friendService) rejectFriendRequest(ctx context.Context, actingUserID, friendshipID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	friendship, err := uow.FriendshipRepository().GetByID(ctx, friendshipID)
	if err != nil {
		return fmt.Errorf("failed to get friendship: %w", err)
	}
	if friendship == nil {
		return NewNotFoundError("friend request not found")
	}
	if friendship.FriendID != actingUserID {
		return NewAuthorizationError("only the request's target can reject it")
	}

	updated, err := uow.FriendshipRepository().UpdateStatus(ctx, friendshipID,
		models.FriendshipStatusPending, models.FriendshipStatusRejected)
	if err != nil {
		return err
	}
	if !updated {
		return NewStateConflictError("this friend request is no longer pending")
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RemoveFriend deletes a friendship edge. Either end of the edge may remove
// it, in any state.
func (s *friendService) RemoveFriend(ctx context.Context, actingUserID, friendshipID int64) error {
	return withRetry(ctx, func() error {
		return s.removeFriend(ctx, actingUserID, friendshipID)
	})
}

func (s *friendService) removeFriend(ctx context.Context, actingUserID, friendshipID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	friendship, err := uow.FriendshipRepository().GetByID(ctx, friendshipID)
	if err != nil {
		return fmt.Errorf("failed to get friendship: %w", err)
	}
	if friendship == nil {
		return NewNotFoundError("friendship not found")
	}
	if !friendship.Involves(actingUserID) {
		return NewAuthorizationError("you are not part of this friendship")
	}

	if err := uow.FriendshipRepository().Delete(ctx, friendshipID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetFriends returns the user's friendships grouped by direction and state
func (s *friendService) GetFriends(ctx context.Context, userID int64) (*models.FriendList, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	friends, err := uow.FriendshipRepository().GetAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	received, err := uow.FriendshipRepository().GetPendingReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	sent, err := uow.FriendshipRepository().GetPendingSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sent requests: %w", err)
	}

	return &models.FriendList{
		Friends:         friends,
		PendingRequests: received,
		SentRequests:    sent,
	}, nil
}
