package service

import (
	"context"
	"fmt"
	"time"

	"betpal/events"
	"betpal/models"
)

type betService struct {
	uowFactory            UnitOfWorkFactory
	enforceImpartialJudge bool
}

// NewBetService creates a new bet lifecycle and settlement service
func NewBetService(uowFactory UnitOfWorkFactory, enforceImpartialJudge bool) BetService {
	return &betService{
		uowFactory:            uowFactory,
		enforceImpartialJudge: enforceImpartialJudge,
	}
}

// CreateBet creates a pending bet, escrows the creator's stake, and invites
// the named participants. The whole effect is one transaction: a failed
// participant lookup leaves no bet row and no debit behind.
func (s *betService) CreateBet(ctx context.Context, creatorID int64, params CreateBetParams) (*models.BetDetail, error) {
	if params.Stake < 1 {
		return nil, NewValidationError("stake must be at least 1 token")
	}
	if !params.Deadline.After(time.Now()) {
		return nil, NewValidationError("deadline must be in the future")
	}
	if len(params.ParticipantUsernames) == 0 {
		return nil, NewValidationError("at least one participant must be invited")
	}
	switch params.ResolutionType {
	case models.ResolutionTypeSelf:
		if params.JudgeID != nil {
			return nil, NewValidationError("a self-resolved bet cannot have a judge")
		}
	case models.ResolutionTypeJudge:
		if params.JudgeID == nil {
			return nil, NewValidationError("a judge-resolved bet requires a judge")
		}
	default:
		return nil, NewValidationError("unknown resolution type %q", params.ResolutionType)
	}

	var detail *models.BetDetail
	err := withRetry(ctx, func() error {
		var err error
		detail, err = s.createBet(ctx, creatorID, params)
		return err
	})
	return detail, err
}

func (s *betService) createBet(ctx context.Context, creatorID int64, params CreateBetParams) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	creator, err := uow.UserRepository().GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, NewNotFoundError("creator not found")
	}
	if creator.TokenBalance < params.Stake {
		return nil, NewInsufficientFundsError("insufficient tokens: have %d, need %d", creator.TokenBalance, params.Stake)
	}

	if params.JudgeID != nil {
		judge, err := uow.UserRepository().GetByID(ctx, *params.JudgeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get judge: %w", err)
		}
		if judge == nil {
			return nil, NewNotFoundError("judge not found")
		}
		if s.enforceImpartialJudge && *params.JudgeID == creatorID {
			return nil, NewValidationError("the judge must not be the bet creator")
		}
	}

	// Resolve every username before mutating anything. An unknown username
	// fails the whole call rather than silently dropping the participant.
	participants := make([]*models.User, 0, len(params.ParticipantUsernames))
	seen := make(map[int64]bool)
	for _, username := range params.ParticipantUsernames {
		user, err := uow.UserRepository().GetByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve participant: %w", err)
		}
		if user == nil {
			return nil, NewNotFoundError("user %q not found", username)
		}
		if user.ID == creatorID {
			return nil, NewValidationError("the creator cannot be invited to their own bet")
		}
		if s.enforceImpartialJudge && params.JudgeID != nil && user.ID == *params.JudgeID {
			return nil, NewValidationError("the judge cannot be a participant")
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		participants = append(participants, user)
	}

	bet := &models.Bet{
		Title:          params.Title,
		Description:    params.Description,
		Stake:          params.Stake,
		Deadline:       params.Deadline,
		Status:         models.BetStatusPending,
		ResolutionType: params.ResolutionType,
		CreatedBy:      creatorID,
		JudgeID:        params.JudgeID,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	// The creator's stake is escrowed at creation, not at acceptance
	creatorBalance, err := uow.UserRepository().DeductBalance(ctx, creatorID, params.Stake)
	if err != nil {
		return nil, err
	}

	escrow := &models.TokenLedgerEntry{
		UserID:          creatorID,
		BalanceBefore:   creatorBalance + params.Stake,
		BalanceAfter:    creatorBalance,
		ChangeAmount:    -params.Stake,
		TransactionType: models.TransactionTypeBetEscrow,
		TransactionMetadata: map[string]any{
			"bet_title": bet.Title,
			"stake":     params.Stake,
		},
		BetID: &bet.ID,
	}
	if err := RecordTokenChange(ctx, uow, escrow); err != nil {
		return nil, fmt.Errorf("failed to record creator escrow: %w", err)
	}

	rows := make([]*models.BetParticipant, 0, len(participants))
	for _, participant := range participants {
		row := &models.BetParticipant{
			BetID:         bet.ID,
			ParticipantID: participant.ID,
			Status:        models.ParticipantStatusInvited,
		}
		if err := uow.BetRepository().CreateParticipant(ctx, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)

		queueNotification(uow, &models.Notification{
			UserID:  participant.ID,
			Message: fmt.Sprintf("%s invited you to bet: %s", creator.Username, bet.Title),
			Type:    models.NotificationTypeBetInvite,
			BetID:   &bet.ID,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetDetail{Bet: bet, Participants: rows}, nil
}

// JoinBet accepts an invitation, escrowing the caller's stake and activating
// the bet. Activating an already active bet is a no-op, not an error.
func (s *betService) JoinBet(ctx context.Context, userID, betID int64) (*models.Bet, error) {
	var bet *models.Bet
	err := withRetry(ctx, func() error {
		var err error
		bet, err = s.joinBet(ctx, userID, betID)
		return err
	})
	return bet, err
}

func (s *betService) joinBet(ctx context.Context, userID, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError("bet not found")
	}
	if bet.IsCompleted() {
		return nil, NewStateConflictError("this bet is no longer accepting participants")
	}

	if err := s.acceptInvitation(ctx, uow, bet, userID); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	bet.Status = models.BetStatusActive
	return bet, nil
}

// RespondToInvitation accepts or rejects an invitation. Unlike JoinBet it
// only applies while the bet is still pending.
func (s *betService) RespondToInvitation(ctx context.Context, userID, betID int64, accept bool) (*models.Bet, error) {
	var bet *models.Bet
	err := withRetry(ctx, func() error {
		var err error
		bet, err = s.respondToInvitation(ctx, userID, betID, accept)
		return err
	})
	return bet, err
}

func (s *betService) respondToInvitation(ctx context.Context, userID, betID int64, accept bool) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError("bet not found")
	}
	if !bet.IsPending() {
		return nil, NewStateConflictError("this bet is no longer accepting participants")
	}

	if accept {
		if err := s.acceptInvitation(ctx, uow, bet, userID); err != nil {
			return nil, err
		}
		bet.Status = models.BetStatusActive
	} else {
		responder, err := uow.UserRepository().GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get responder: %w", err)
		}
		if responder == nil {
			return nil, NewNotFoundError("user not found")
		}

		updated, err := uow.BetRepository().UpdateParticipantStatus(ctx, betID, userID,
			models.ParticipantStatusInvited, models.ParticipantStatusRejected)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, s.classifyInvitationFailure(ctx, uow, betID, userID)
		}

		// Rejection is terminal and costs nothing; the bet stays pending
		queueNotification(uow, &models.Notification{
			UserID:  bet.CreatedBy,
			Message: fmt.Sprintf("%s rejected your bet: %s", responder.Username, bet.Title),
			Type:    models.NotificationTypeBetRejected,
			BetID:   &bet.ID,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// acceptInvitation is the shared accept path behind JoinBet and
// RespondToInvitation. Called with the bet row already locked.
func (s *betService) acceptInvitation(ctx context.Context, uow UnitOfWork, bet *models.Bet, userID int64) error {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return NewNotFoundError("user not found")
	}
	if user.TokenBalance < bet.Stake {
		return NewInsufficientFundsError("insufficient tokens: have %d, need %d", user.TokenBalance, bet.Stake)
	}

	updated, err := uow.BetRepository().UpdateParticipantStatus(ctx, bet.ID, userID,
		models.ParticipantStatusInvited, models.ParticipantStatusAccepted)
	if err != nil {
		return err
	}
	if !updated {
		return s.classifyInvitationFailure(ctx, uow, bet.ID, userID)
	}

	balance, err := uow.UserRepository().DeductBalance(ctx, userID, bet.Stake)
	if err != nil {
		return err
	}

	escrow := &models.TokenLedgerEntry{
		UserID:          userID,
		BalanceBefore:   balance + bet.Stake,
		BalanceAfter:    balance,
		ChangeAmount:    -bet.Stake,
		TransactionType: models.TransactionTypeBetEscrow,
		TransactionMetadata: map[string]any{
			"bet_title": bet.Title,
			"stake":     bet.Stake,
		},
		BetID: &bet.ID,
	}
	if err := RecordTokenChange(ctx, uow, escrow); err != nil {
		return fmt.Errorf("failed to record participant escrow: %w", err)
	}

	if err := uow.BetRepository().MarkActive(ctx, bet.ID); err != nil {
		return err
	}
	if bet.IsPending() {
		uow.EventBus().Publish(events.BetStateChangeEvent{
			BetID:     bet.ID,
			OldStatus: models.BetStatusPending,
			NewStatus: models.BetStatusActive,
		})
	}

	queueNotification(uow, &models.Notification{
		UserID:  bet.CreatedBy,
		Message: fmt.Sprintf("%s has joined your bet: %s", user.Username, bet.Title),
		Type:    models.NotificationTypeBetAccepted,
		BetID:   &bet.ID,
	})

	return nil
}

// classifyInvitationFailure turns a failed guarded status update into the
// precise error: not invited at all, already joined, or already rejected.
func (s *betService) classifyInvitationFailure(ctx context.Context, uow UnitOfWork, betID, userID int64) error {
	participant, err := uow.BetRepository().GetParticipant(ctx, betID, userID)
	if err != nil {
		return err
	}
	if participant == nil {
		return NewNotFoundError("you were not invited to this bet")
	}
	switch participant.Status {
	case models.ParticipantStatusAccepted:
		return NewStateConflictError("you already joined this bet")
	case models.ParticipantStatusRejected:
		return NewStateConflictError("you already rejected this invitation")
	default:
		return NewStateConflictError("invitation is not in a transitionable state")
	}
}

// ResolveBet completes an active bet and pays the full pot to the winner.
// The pot is exactly stake times the number of stakeholders; no tokens are
// created or destroyed.
func (s *betService) ResolveBet(ctx context.Context, actingUserID, betID, winnerID int64) (*models.BetResult, error) {
	var result *models.BetResult
	err := withRetry(ctx, func() error {
		var err error
		result, err = s.resolveBet(ctx, actingUserID, betID, winnerID)
		return err
	})
	return result, err
}

func (s *betService) resolveBet(ctx context.Context, actingUserID, betID, winnerID int64) (*models.BetResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the bet row first: the status check, the payout, and the
	// completion all happen against this locked state.
	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError("bet not found")
	}
	if !bet.IsActive() {
		return nil, NewStateConflictError("this bet cannot be resolved")
	}

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet detail: %w", err)
	}

	switch bet.ResolutionType {
	case models.ResolutionTypeJudge:
		if !bet.IsJudge(actingUserID) {
			return nil, NewAuthorizationError("only the judge can resolve this bet")
		}
	default:
		if !detail.IsStakeholder(actingUserID) {
			return nil, NewAuthorizationError("only participants can resolve this bet")
		}
	}

	if !detail.IsStakeholder(winnerID) {
		return nil, NewValidationError("the winner must be the creator or an accepted participant")
	}

	stakeholders := detail.StakeholderIDs()
	totalWinnings := bet.Stake * int64(len(stakeholders))

	completed, err := uow.BetRepository().CompleteBet(ctx, betID, winnerID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, NewStateConflictError("this bet cannot be resolved")
	}

	winner, err := uow.UserRepository().GetByID(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}
	if winner == nil {
		return nil, NewNotFoundError("winner not found")
	}

	// The ledger snapshot comes from the UPDATE itself: only the bet row is
	// locked here, so a read of the winner's row could race another escrow.
	winnerBalance, err := uow.UserRepository().AddBalance(ctx, winnerID, totalWinnings)
	if err != nil {
		return nil, err
	}
	if err := uow.UserRepository().IncrementWins(ctx, winnerID); err != nil {
		return nil, err
	}

	payout := &models.TokenLedgerEntry{
		UserID:          winnerID,
		BalanceBefore:   winnerBalance - totalWinnings,
		BalanceAfter:    winnerBalance,
		ChangeAmount:    totalWinnings,
		TransactionType: models.TransactionTypeBetPayout,
		TransactionMetadata: map[string]any{
			"bet_title":    bet.Title,
			"stakeholders": len(stakeholders),
			"stake":        bet.Stake,
		},
		BetID: &bet.ID,
	}
	if err := RecordTokenChange(ctx, uow, payout); err != nil {
		return nil, fmt.Errorf("failed to record winner payout: %w", err)
	}

	var loserIDs []int64
	for _, stakeholderID := range stakeholders {
		if stakeholderID == winnerID {
			continue
		}
		// Their stake was escrowed at create/join time; only the counter moves
		if err := uow.UserRepository().IncrementLosses(ctx, stakeholderID); err != nil {
			return nil, err
		}
		loserIDs = append(loserIDs, stakeholderID)
	}

	for _, stakeholderID := range stakeholders {
		message := fmt.Sprintf("The bet: %s was decided. %s won.", bet.Title, winner.Username)
		if stakeholderID == winnerID {
			message = fmt.Sprintf("Congratulations! You won the bet: %s", bet.Title)
		}
		queueNotification(uow, &models.Notification{
			UserID:  stakeholderID,
			Message: message,
			Type:    models.NotificationTypeBetCompleted,
			BetID:   &bet.ID,
		})
	}

	uow.EventBus().Publish(events.BetStateChangeEvent{
		BetID:     bet.ID,
		OldStatus: models.BetStatusActive,
		NewStatus: models.BetStatusCompleted,
		WinnerID:  &winnerID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	bet.Status = models.BetStatusCompleted
	bet.WinnerID = &winnerID

	return &models.BetResult{
		Bet:               bet,
		WinnerID:          winnerID,
		TotalStakeholders: len(stakeholders),
		TotalWinnings:     totalWinnings,
		LoserIDs:          loserIDs,
	}, nil
}

// InviteParticipant invites another user to an existing bet
func (s *betService) InviteParticipant(ctx context.Context, inviterID, betID int64, targetUsername string) (*models.BetParticipant, error) {
	var participant *models.BetParticipant
	err := withRetry(ctx, func() error {
		var err error
		participant, err = s.inviteParticipant(ctx, inviterID, betID, targetUsername)
		return err
	})
	return participant, err
}

func (s *betService) inviteParticipant(ctx context.Context, inviterID, betID int64, targetUsername string) (*models.BetParticipant, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError("bet not found")
	}
	if bet.IsCompleted() {
		return nil, NewStateConflictError("this bet is no longer accepting participants")
	}

	inviter, err := uow.UserRepository().GetByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inviter: %w", err)
	}
	if inviter == nil {
		return nil, NewNotFoundError("inviter not found")
	}

	target, err := uow.UserRepository().GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target: %w", err)
	}
	if target == nil {
		return nil, NewNotFoundError("user %q not found", targetUsername)
	}
	if target.ID == bet.CreatedBy {
		return nil, NewValidationError("the creator cannot be invited to their own bet")
	}

	existing, err := uow.BetRepository().GetParticipant(ctx, betID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewStateConflictError("%s is already invited to this bet", target.Username)
	}

	// The unique constraint on (bet_id, participant_id) backs this up if two
	// inviters race past the check above.
	participant := &models.BetParticipant{
		BetID:         betID,
		ParticipantID: target.ID,
		Status:        models.ParticipantStatusInvited,
	}
	if err := uow.BetRepository().CreateParticipant(ctx, participant); err != nil {
		return nil, err
	}

	queueNotification(uow, &models.Notification{
		UserID:  target.ID,
		Message: fmt.Sprintf("%s invited you to bet: %s", inviter.Username, bet.Title),
		Type:    models.NotificationTypeBetInvite,
		BetID:   &bet.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return participant, nil
}

// GetBetDetail retrieves a bet with its participants
func (s *betService) GetBetDetail(ctx context.Context, betID int64) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet detail: %w", err)
	}
	if detail == nil {
		return nil, NewNotFoundError("bet not found")
	}

	return detail, nil
}

// GetBetsByUser returns bets the user created or accepted into
func (s *betService) GetBetsByUser(ctx context.Context, userID int64) ([]*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	return bets, nil
}
