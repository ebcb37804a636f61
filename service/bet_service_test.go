package service

import (
	"context"
	"testing"
	"time"

	"betpal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBetServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockBetRepository, *MockTokenLedgerRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBetRepo := new(MockBetRepository)
	mockLedgerRepo := new(MockTokenLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, mockBetRepo, new(MockNotificationRepository), new(MockFriendshipRepository), mockLedgerRepo)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockLedgerRepo
}

func TestBetService_CreateBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockLedgerRepo := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	creator := &models.User{ID: 1, Username: "alice", TokenBalance: 100}
	invitee := &models.User{ID: 2, Username: "bob", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(invitee, nil)

	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Title == "First to the summit" &&
			b.Stake == 20 &&
			b.Status == models.BetStatusPending &&
			b.CreatedBy == 1
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).ID = 10
	})

	// The creator's stake is escrowed at creation
	mockUserRepo.On("DeductBalance", ctx, int64(1), int64(20)).Return(int64(80), nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TokenLedgerEntry) bool {
		return e.UserID == 1 &&
			e.BalanceBefore == 100 &&
			e.BalanceAfter == 80 &&
			e.ChangeAmount == -20 &&
			e.TransactionType == models.TransactionTypeBetEscrow
	})).Return(nil)

	mockBetRepo.On("CreateParticipant", ctx, mock.MatchedBy(func(p *models.BetParticipant) bool {
		return p.BetID == 10 && p.ParticipantID == 2 && p.Status == models.ParticipantStatusInvited
	})).Return(nil)

	detail, err := service.CreateBet(ctx, 1, CreateBetParams{
		Title:                "First to the summit",
		Stake:                20,
		Deadline:             time.Now().Add(24 * time.Hour),
		ResolutionType:       models.ResolutionTypeSelf,
		ParticipantUsernames: []string{"bob"},
	})

	assert.NoError(t, err)
	assert.NotNil(t, detail)
	assert.Equal(t, int64(10), detail.Bet.ID)
	assert.Len(t, detail.Participants, 1)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, int64(2), notifications[0].UserID)
	assert.Equal(t, models.NotificationTypeBetInvite, notifications[0].Type)
	assert.Equal(t, "alice invited you to bet: First to the summit", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestBetService_CreateBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, _, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	creator := &models.User{ID: 1, Username: "alice", TokenBalance: 10}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)

	detail, err := service.CreateBet(ctx, 1, CreateBetParams{
		Title:                "Too rich for me",
		Stake:                50,
		Deadline:             time.Now().Add(time.Hour),
		ResolutionType:       models.ResolutionTypeSelf,
		ParticipantUsernames: []string{"bob"},
	})

	assert.Nil(t, detail)
	assert.True(t, IsKind(err, KindInsufficientFunds))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_CreateBet_UnknownParticipant(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, _, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	creator := &models.User{ID: 1, Username: "alice", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)
	mockUserRepo.On("GetByUsername", ctx, "nobody").Return(nil, nil)

	// An unknown username fails the whole call before any row is written
	detail, err := service.CreateBet(ctx, 1, CreateBetParams{
		Title:                "Ghost bet",
		Stake:                20,
		Deadline:             time.Now().Add(time.Hour),
		ResolutionType:       models.ResolutionTypeSelf,
		ParticipantUsernames: []string{"nobody"},
	})

	assert.Nil(t, detail)
	assert.True(t, IsKind(err, KindNotFound))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_CreateBet_Validation(t *testing.T) {
	ctx := context.Background()

	judgeID := int64(3)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		params CreateBetParams
	}{
		{
			name: "zero stake",
			params: CreateBetParams{
				Title: "x", Stake: 0, Deadline: future,
				ResolutionType: models.ResolutionTypeSelf, ParticipantUsernames: []string{"bob"},
			},
		},
		{
			name: "past deadline",
			params: CreateBetParams{
				Title: "x", Stake: 10, Deadline: time.Now().Add(-time.Hour),
				ResolutionType: models.ResolutionTypeSelf, ParticipantUsernames: []string{"bob"},
			},
		},
		{
			name: "no participants",
			params: CreateBetParams{
				Title: "x", Stake: 10, Deadline: future,
				ResolutionType: models.ResolutionTypeSelf,
			},
		},
		{
			name: "judge on self-resolved bet",
			params: CreateBetParams{
				Title: "x", Stake: 10, Deadline: future,
				ResolutionType: models.ResolutionTypeSelf, JudgeID: &judgeID,
				ParticipantUsernames: []string{"bob"},
			},
		},
		{
			name: "judge-resolved bet without judge",
			params: CreateBetParams{
				Title: "x", Stake: 10, Deadline: future,
				ResolutionType: models.ResolutionTypeJudge, ParticipantUsernames: []string{"bob"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockFactory, _, _, _ := newBetServiceMocks()
			service := NewBetService(mockFactory, true)

			detail, err := service.CreateBet(ctx, 1, tt.params)

			assert.Nil(t, detail)
			assert.True(t, IsKind(err, KindValidation))
			mockFactory.AssertNotCalled(t, "Create")
		})
	}
}

func TestBetService_CreateBet_JudgeCannotBeCreator(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, _, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	creator := &models.User{ID: 1, Username: "alice", TokenBalance: 100}
	judgeID := int64(1)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)

	detail, err := service.CreateBet(ctx, 1, CreateBetParams{
		Title: "Judge and jury", Stake: 10, Deadline: time.Now().Add(time.Hour),
		ResolutionType: models.ResolutionTypeJudge, JudgeID: &judgeID,
		ParticipantUsernames: []string{"bob"},
	})

	assert.Nil(t, detail)
	assert.True(t, IsKind(err, KindValidation))
}

func TestBetService_JoinBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockLedgerRepo := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{
		ID: 10, Title: "First to the summit", Stake: 20,
		Status: models.BetStatusPending, CreatedBy: 1,
	}
	joiner := &models.User{ID: 2, Username: "bob", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(joiner, nil)
	mockBetRepo.On("UpdateParticipantStatus", ctx, int64(10), int64(2),
		models.ParticipantStatusInvited, models.ParticipantStatusAccepted).Return(true, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(2), int64(20)).Return(int64(80), nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TokenLedgerEntry) bool {
		return e.UserID == 2 && e.BalanceAfter == 80 && e.TransactionType == models.TransactionTypeBetEscrow
	})).Return(nil)
	mockBetRepo.On("MarkActive", ctx, int64(10)).Return(nil)

	result, err := service.JoinBet(ctx, 2, 10)

	assert.NoError(t, err)
	assert.Equal(t, models.BetStatusActive, result.Status)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, int64(1), notifications[0].UserID)
	assert.Equal(t, "bob has joined your bet: First to the summit", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestBetService_JoinBet_AlreadyJoined(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Stake: 20, Status: models.BetStatusActive, CreatedBy: 1}
	joiner := &models.User{ID: 2, Username: "bob", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(joiner, nil)
	mockBetRepo.On("UpdateParticipantStatus", ctx, int64(10), int64(2),
		models.ParticipantStatusInvited, models.ParticipantStatusAccepted).Return(false, nil)
	mockBetRepo.On("GetParticipant", ctx, int64(10), int64(2)).Return(&models.BetParticipant{
		BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusAccepted,
	}, nil)

	result, err := service.JoinBet(ctx, 2, 10)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindStateConflict))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_JoinBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Stake: 50, Status: models.BetStatusPending, CreatedBy: 1}
	joiner := &models.User{ID: 2, Username: "bob", TokenBalance: 30}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(joiner, nil)

	result, err := service.JoinBet(ctx, 2, 10)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindInsufficientFunds))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_JoinBet_NotInvited(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Stake: 20, Status: models.BetStatusPending, CreatedBy: 1}
	outsider := &models.User{ID: 9, Username: "mallory", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(9)).Return(outsider, nil)
	mockBetRepo.On("UpdateParticipantStatus", ctx, int64(10), int64(9),
		models.ParticipantStatusInvited, models.ParticipantStatusAccepted).Return(false, nil)
	mockBetRepo.On("GetParticipant", ctx, int64(10), int64(9)).Return(nil, nil)

	result, err := service.JoinBet(ctx, 9, 10)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBetService_JoinBet_Completed(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Stake: 20, Status: models.BetStatusCompleted, CreatedBy: 1}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)

	result, err := service.JoinBet(ctx, 2, 10)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestBetService_RespondToInvitation_Reject(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{
		ID: 10, Title: "First to the summit", Stake: 20,
		Status: models.BetStatusPending, CreatedBy: 1,
	}
	responder := &models.User{ID: 2, Username: "bob", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(responder, nil)
	mockBetRepo.On("UpdateParticipantStatus", ctx, int64(10), int64(2),
		models.ParticipantStatusInvited, models.ParticipantStatusRejected).Return(true, nil)

	result, err := service.RespondToInvitation(ctx, 2, 10, false)

	assert.NoError(t, err)
	// Rejection costs nothing and leaves the bet pending
	assert.Equal(t, models.BetStatusPending, result.Status)
	mockUserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeBetRejected, notifications[0].Type)
	assert.Equal(t, "bob rejected your bet: First to the summit", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_RespondToInvitation_BetNotPending(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Stake: 20, Status: models.BetStatusActive, CreatedBy: 1}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)

	result, err := service.RespondToInvitation(ctx, 2, 10, true)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestBetService_ResolveBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockLedgerRepo := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{
		ID: 10, Title: "First to the summit", Stake: 20,
		Status: models.BetStatusActive, ResolutionType: models.ResolutionTypeSelf, CreatedBy: 1,
	}
	detail := &models.BetDetail{
		Bet: bet,
		Participants: []*models.BetParticipant{
			{BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusAccepted},
		},
	}
	winner := &models.User{ID: 2, Username: "bob", TokenBalance: 80}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockBetRepo.On("GetDetailByID", ctx, int64(10)).Return(detail, nil)
	mockBetRepo.On("CompleteBet", ctx, int64(10), int64(2)).Return(true, nil)

	// Pot is stake times stakeholders: 20 * 2 = 40
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(winner, nil)
	mockUserRepo.On("AddBalance", ctx, int64(2), int64(40)).Return(int64(120), nil)
	mockUserRepo.On("IncrementWins", ctx, int64(2)).Return(nil)
	mockUserRepo.On("IncrementLosses", ctx, int64(1)).Return(nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TokenLedgerEntry) bool {
		return e.UserID == 2 &&
			e.BalanceBefore == 80 &&
			e.BalanceAfter == 120 &&
			e.ChangeAmount == 40 &&
			e.TransactionType == models.TransactionTypeBetPayout
	})).Return(nil)

	result, err := service.ResolveBet(ctx, 1, 10, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), result.WinnerID)
	assert.Equal(t, 2, result.TotalStakeholders)
	assert.Equal(t, int64(40), result.TotalWinnings)
	assert.Equal(t, []int64{1}, result.LoserIDs)
	assert.Equal(t, models.BetStatusCompleted, result.Bet.Status)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 2)
	messages := map[int64]string{}
	for _, n := range notifications {
		assert.Equal(t, models.NotificationTypeBetCompleted, n.Type)
		messages[n.UserID] = n.Message
	}
	assert.Equal(t, "The bet: First to the summit was decided. bob won.", messages[1])
	assert.Equal(t, "Congratulations! You won the bet: First to the summit", messages[2])

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestBetService_ResolveBet_JudgeAuthorization(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	judgeID := int64(3)
	bet := &models.Bet{
		ID: 10, Stake: 20, Status: models.BetStatusActive,
		ResolutionType: models.ResolutionTypeJudge, CreatedBy: 1, JudgeID: &judgeID,
	}
	detail := &models.BetDetail{
		Bet: bet,
		Participants: []*models.BetParticipant{
			{BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusAccepted},
		},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockBetRepo.On("GetDetailByID", ctx, int64(10)).Return(detail, nil)

	// The creator is a stakeholder but not the judge
	result, err := service.ResolveBet(ctx, 1, 10, 2)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindAuthorization))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_ResolveBet_NonParticipant(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{
		ID: 10, Stake: 20, Status: models.BetStatusActive,
		ResolutionType: models.ResolutionTypeSelf, CreatedBy: 1,
	}
	detail := &models.BetDetail{
		Bet: bet,
		Participants: []*models.BetParticipant{
			{BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusAccepted},
		},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockBetRepo.On("GetDetailByID", ctx, int64(10)).Return(detail, nil)

	result, err := service.ResolveBet(ctx, 9, 10, 2)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestBetService_ResolveBet_AlreadyCompleted(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	winnerID := int64(2)
	bet := &models.Bet{
		ID: 10, Stake: 20, Status: models.BetStatusCompleted,
		ResolutionType: models.ResolutionTypeSelf, CreatedBy: 1, WinnerID: &winnerID,
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)

	// Resolving twice fails: completed is terminal
	result, err := service.ResolveBet(ctx, 1, 10, 1)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindStateConflict))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_ResolveBet_WinnerNotStakeholder(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{
		ID: 10, Stake: 20, Status: models.BetStatusActive,
		ResolutionType: models.ResolutionTypeSelf, CreatedBy: 1,
	}
	detail := &models.BetDetail{
		Bet: bet,
		Participants: []*models.BetParticipant{
			{BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusRejected},
		},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(bet, nil)
	mockBetRepo.On("GetDetailByID", ctx, int64(10)).Return(detail, nil)

	// A rejected participant never escrowed a stake and cannot win
	result, err := service.ResolveBet(ctx, 1, 10, 2)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindValidation))
}

func TestBetService_InviteParticipant_AlreadyInvited(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Title: "First to the summit", Stake: 20, Status: models.BetStatusPending, CreatedBy: 1}
	inviter := &models.User{ID: 1, Username: "alice", TokenBalance: 80}
	target := &models.User{ID: 2, Username: "bob", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(inviter, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(target, nil)
	mockBetRepo.On("GetParticipant", ctx, int64(10), int64(2)).Return(&models.BetParticipant{
		BetID: 10, ParticipantID: 2, Status: models.ParticipantStatusInvited,
	}, nil)

	participant, err := service.InviteParticipant(ctx, 1, 10, "bob")

	assert.Nil(t, participant)
	assert.True(t, IsKind(err, KindStateConflict))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_InviteParticipant_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory, true)

	bet := &models.Bet{ID: 10, Title: "First to the summit", Stake: 20, Status: models.BetStatusPending, CreatedBy: 1}
	inviter := &models.User{ID: 1, Username: "alice", TokenBalance: 80}
	target := &models.User{ID: 3, Username: "carol", TokenBalance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(10)).Return(bet, nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(inviter, nil)
	mockUserRepo.On("GetByUsername", ctx, "carol").Return(target, nil)
	mockBetRepo.On("GetParticipant", ctx, int64(10), int64(3)).Return(nil, nil)
	mockBetRepo.On("CreateParticipant", ctx, mock.MatchedBy(func(p *models.BetParticipant) bool {
		return p.BetID == 10 && p.ParticipantID == 3 && p.Status == models.ParticipantStatusInvited
	})).Return(nil)

	participant, err := service.InviteParticipant(ctx, 1, 10, "carol")

	assert.NoError(t, err)
	assert.NotNil(t, participant)

	notifications := mockUoW.Publisher().QueuedNotifications()
	assert.Len(t, notifications, 1)
	assert.Equal(t, int64(3), notifications[0].UserID)
	assert.Equal(t, "alice invited you to bet: First to the summit", notifications[0].Message)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}
