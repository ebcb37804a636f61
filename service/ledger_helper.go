package service

import (
	"context"
	"fmt"

	"betpal/events"
	"betpal/models"
)

// RecordTokenChange records a ledger entry and publishes the matching
// balance-change event. This is the single entry point for all token balance
// changes in the system.
func RecordTokenChange(ctx context.Context, uow UnitOfWork, entry *models.TokenLedgerEntry) error {
	if err := uow.TokenLedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          entry.UserID,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		TransactionType: entry.TransactionType,
		ChangeAmount:    entry.ChangeAmount,
	})

	return nil
}

// queueNotification publishes a notification record onto the unit of work's
// transactional bus. The record is written to the store only after the
// producing transaction commits, and never blocks or fails it.
func queueNotification(uow UnitOfWork, n *models.Notification) {
	uow.EventBus().Publish(events.NotificationQueuedEvent{Notification: n})
}
