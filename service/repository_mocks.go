package service

import (
	"context"

	"betpal/events"
	"betpal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) IncrementWins(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementLosses(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetDetail), args.Error(1)
}

func (m *MockBetRepository) GetByUser(ctx context.Context, userID int64) ([]*models.BetDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetDetail), args.Error(1)
}

func (m *MockBetRepository) MarkActive(ctx context.Context, betID int64) error {
	args := m.Called(ctx, betID)
	return args.Error(0)
}

func (m *MockBetRepository) CompleteBet(ctx context.Context, betID int64, winnerID int64) (bool, error) {
	args := m.Called(ctx, betID, winnerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) CreateParticipant(ctx context.Context, p *models.BetParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockBetRepository) GetParticipant(ctx context.Context, betID, participantID int64) (*models.BetParticipant, error) {
	args := m.Called(ctx, betID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetParticipant), args.Error(1)
}

func (m *MockBetRepository) UpdateParticipantStatus(ctx context.Context, betID, participantID int64, from, to models.ParticipantStatus) (bool, error) {
	args := m.Called(ctx, betID, participantID, from, to)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFriendshipRepository is a mock implementation of FriendshipRepository
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFriendshipRepository) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) GetBetweenUsers(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) UpdateStatus(ctx context.Context, id int64, from, to models.FriendshipStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFriendshipRepository) GetAcceptedByUser(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) GetPendingReceived(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) GetPendingSent(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Friendship), args.Error(1)
}

// MockTokenLedgerRepository is a mock implementation of TokenLedgerRepository
type MockTokenLedgerRepository struct {
	mock.Mock
}

func (m *MockTokenLedgerRepository) Record(ctx context.Context, entry *models.TokenLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTokenLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.TokenLedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TokenLedgerEntry), args.Error(1)
}

// RecordingPublisher collects published events so tests can assert on what a
// flow would have emitted, including the notification records it queued.
type RecordingPublisher struct {
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// QueuedNotifications returns the notification records published so far
func (p *RecordingPublisher) QueuedNotifications() []*models.Notification {
	var out []*models.Notification
	for _, ev := range p.Events {
		if queued, ok := ev.(events.NotificationQueuedEvent); ok {
			out = append(out, queued.Notification)
		}
	}
	return out
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields set through SetRepositories; only the transaction lifecycle
// goes through expectations.
type MockUnitOfWork struct {
	mock.Mock
	userRepo         UserRepository
	betRepo          BetRepository
	notificationRepo NotificationRepository
	friendshipRepo   FriendshipRepository
	tokenLedgerRepo  TokenLedgerRepository
	eventBus         EventPublisher
}

// SetRepositories wires the unit of work's repository mocks and gives it a
// fresh recording event publisher
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	betRepo BetRepository,
	notificationRepo NotificationRepository,
	friendshipRepo FriendshipRepository,
	tokenLedgerRepo TokenLedgerRepository,
) {
	m.userRepo = userRepo
	m.betRepo = betRepo
	m.notificationRepo = notificationRepo
	m.friendshipRepo = friendshipRepo
	m.tokenLedgerRepo = tokenLedgerRepo
	m.eventBus = &RecordingPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) NotificationRepository() NotificationRepository {
	return m.notificationRepo
}

func (m *MockUnitOfWork) FriendshipRepository() FriendshipRepository {
	return m.friendshipRepo
}

func (m *MockUnitOfWork) TokenLedgerRepository() TokenLedgerRepository {
	return m.tokenLedgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// Publisher returns the recording publisher backing EventBus
func (m *MockUnitOfWork) Publisher() *RecordingPublisher {
	return m.eventBus.(*RecordingPublisher)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
