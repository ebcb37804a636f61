package service

import (
	"context"
	"testing"

	"betpal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newFriendServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockFriendshipRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFriendshipRepo := new(MockFriendshipRepository)

	mockUoW.SetRepositories(mockUserRepo, new(MockBetRepository), new(MockNotificationRepository), mockFriendshipRepo, new(MockTokenLedgerRepository))
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockUserRepo, mockFriendshipRepo
}

func TestFriendService_AddFriend_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	requester := &models.User{ID: 1, Username: "alice"}
	target := &models.User{ID: 2, Username: "bob"}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(requester, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(target, nil)
	mockFriendshipRepo.On("GetBetweenUsers", ctx, int64(1), int64(2)).Return(nil, nil)
	mockFriendshipRepo.On("Create", ctx, mock.MatchedBy(func(f *models.Friendship) bool {
		return f.UserID == 1 && f.FriendID == 2 && f.Status == models.FriendshipStatusPending
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Friendship).ID = 5
	})

	friendship, err := service.AddFriend(ctx, 1, "bob")

	assert.NoError(t, err)
	assert.Equal(t, int64(5), friendship.ID)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, int64(2), notifications[0].UserID)
	assert.Equal(t, models.NotificationTypeFriendRequest, notifications[0].Type)
	assert.Equal(t, "alice sent you a friend request", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockFriendshipRepo.AssertExpectations(t)
}

func TestFriendService_AddFriend_Self(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, _ := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	requester := &models.User{ID: 1, Username: "alice"}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(requester, nil)
	mockUserRepo.On("GetByUsername", ctx, "alice").Return(requester, nil)

	friendship, err := service.AddFriend(ctx, 1, "alice")

	assert.Nil(t, friendship)
	assert.True(t, IsKind(err, KindValidation))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestFriendService_AddFriend_DuplicateEitherDirection(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	requester := &models.User{ID: 1, Username: "alice"}
	target := &models.User{ID: 2, Username: "bob"}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(requester, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(target, nil)
	// The edge was created in the other direction
	mockFriendshipRepo.On("GetBetweenUsers", ctx, int64(1), int64(2)).Return(&models.Friendship{
		ID: 5, UserID: 2, FriendID: 1, Status: models.FriendshipStatusPending,
	}, nil)

	friendship, err := service.AddFriend(ctx, 1, "bob")

	assert.Nil(t, friendship)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestFriendService_AcceptFriendRequest_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	accepter := &models.User{ID: 2, Username: "bob"}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusPending,
	}, nil)
	mockFriendshipRepo.On("UpdateStatus", ctx, int64(5),
		models.FriendshipStatusPending, models.FriendshipStatusAccepted).Return(true, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(accepter, nil)

	friendship, err := service.AcceptFriendRequest(ctx, 2, 5)

	assert.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, friendship.Status)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, int64(1), notifications[0].UserID)
	assert.Equal(t, "bob accepted your friend request", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockFriendshipRepo.AssertExpectations(t)
}

func TestFriendService_AcceptFriendRequest_NotTarget(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusPending,
	}, nil)

	// The requester cannot accept their own request
	friendship, err := service.AcceptFriendRequest(ctx, 1, 5)

	assert.Nil(t, friendship)
	assert.True(t, IsKind(err, KindAuthorization))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestFriendService_AcceptFriendRequest_NotPending(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusAccepted,
	}, nil)
	mockFriendshipRepo.On("UpdateStatus", ctx, int64(5),
		models.FriendshipStatusPending, models.FriendshipStatusAccepted).Return(false, nil)

	friendship, err := service.AcceptFriendRequest(ctx, 2, 5)

	assert.Nil(t, friendship)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestFriendService_RejectFriendRequest_NoNotification(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusPending,
	}, nil)
	mockFriendshipRepo.On("UpdateStatus", ctx, int64(5),
		models.FriendshipStatusPending, models.FriendshipStatusRejected).Return(true, nil)

	err := service.RejectFriendRequest(ctx, 2, 5)

	assert.NoError(t, err)
	assert.Empty(t, mockUoW.Publisher().QueuedNotifications())
	mockUoW.AssertExpectations(t)
}

func TestFriendService_RemoveFriend_NotOnEdge(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusAccepted,
	}, nil)

	err := service.RemoveFriend(ctx, 9, 5)

	assert.True(t, IsKind(err, KindAuthorization))
	mockFriendshipRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFriendService_RemoveFriend_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetByID", ctx, int64(5)).Return(&models.Friendship{
		ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusAccepted,
	}, nil)
	mockFriendshipRepo.On("Delete", ctx, int64(5)).Return(nil)

	err := service.RemoveFriend(ctx, 2, 5)

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockFriendshipRepo.AssertExpectations(t)
}

func TestFriendService_GetFriends(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockFriendshipRepo := newFriendServiceMocks()
	service := NewFriendService(mockFactory)

	accepted := []*models.Friendship{{ID: 5, UserID: 1, FriendID: 2, Status: models.FriendshipStatusAccepted}}
	received := []*models.Friendship{{ID: 6, UserID: 3, FriendID: 1, Status: models.FriendshipStatusPending}}
	sent := []*models.Friendship{{ID: 7, UserID: 1, FriendID: 4, Status: models.FriendshipStatusPending}}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockFriendshipRepo.On("GetAcceptedByUser", ctx, int64(1)).Return(accepted, nil)
	mockFriendshipRepo.On("GetPendingReceived", ctx, int64(1)).Return(received, nil)
	mockFriendshipRepo.On("GetPendingSent", ctx, int64(1)).Return(sent, nil)

	list, err := service.GetFriends(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, accepted, list.Friends)
	assert.Equal(t, received, list.PendingRequests)
	assert.Equal(t, sent, list.SentRequests)
}
