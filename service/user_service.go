package service

import (
	"context"
	"fmt"
	"strings"

	"betpal/events"
	"betpal/models"

	log "github.com/sirupsen/logrus"
)

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserService creates a new user service. New users are seeded with the
// starting balance and a matching initial ledger entry.
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// GetOrCreateUser retrieves an existing user by username or creates a new one
func (s *userService) GetOrCreateUser(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username must not be empty")
	}

	var user *models.User
	err := withRetry(ctx, func() error {
		var err error
		user, err = s.getOrCreateUser(ctx, username)
		return err
	})
	return user, err
}

func (s *userService) getOrCreateUser(ctx context.Context, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, username, s.startingBalance)
	if err != nil {
		return nil, err
	}

	initial := &models.TokenLedgerEntry{
		UserID:          user.ID,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
	}
	if err := RecordTokenChange(ctx, uow, initial); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	queueNotification(uow, &models.Notification{
		UserID:  user.ID,
		Message: fmt.Sprintf("Welcome to BetPal, %s! You've received %d tokens to start.", user.Username, s.startingBalance),
		Type:    models.NotificationTypeTokensReceived,
	})

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:         user.ID,
		Username:       user.Username,
		InitialBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   user.ID,
		"username": user.Username,
	}).Info("Created new user")

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	return user, nil
}
