package testutil

import (
	"time"

	"betpal/models"
)

// CreateTestBet creates a bet with default values
func CreateTestBet(createdBy int64, stake int64) *models.Bet {
	return &models.Bet{
		Title:          "Test bet",
		Description:    "A bet used in tests",
		Stake:          stake,
		Deadline:       time.Now().Add(24 * time.Hour),
		Status:         models.BetStatusPending,
		ResolutionType: models.ResolutionTypeSelf,
		CreatedBy:      createdBy,
	}
}

// CreateTestJudgeBet creates a judge-resolved bet
func CreateTestJudgeBet(createdBy, judgeID int64, stake int64) *models.Bet {
	bet := CreateTestBet(createdBy, stake)
	bet.ResolutionType = models.ResolutionTypeJudge
	bet.JudgeID = &judgeID
	return bet
}

// CreateTestLedgerEntry creates a ledger entry with default values
func CreateTestLedgerEntry(userID int64, transactionType models.TransactionType) *models.TokenLedgerEntry {
	return &models.TokenLedgerEntry{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    980,
		ChangeAmount:    -20,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestNotification creates a notification record with default values
func CreateTestNotification(userID int64, notificationType models.NotificationType) *models.Notification {
	return &models.Notification{
		UserID:  userID,
		Message: "test notification",
		Type:    notificationType,
	}
}
