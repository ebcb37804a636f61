package service

import (
	"context"
	"fmt"

	"betpal/events"
	"betpal/models"

	log "github.com/sirupsen/logrus"
)

type notificationService struct {
	uowFactory UnitOfWorkFactory
}

// NewNotificationService creates a new notification read service
func NewNotificationService(uowFactory UnitOfWorkFactory) NotificationService {
	return &notificationService{uowFactory: uowFactory}
}

// GetUserNotifications returns the user's notifications, newest first
func (s *notificationService) GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	notifications, err := uow.NotificationRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationAsRead flips the read flag. Idempotent: marking an already
// read notification succeeds without effect.
func (s *notificationService) MarkNotificationAsRead(ctx context.Context, notificationID int64) error {
	return withRetry(ctx, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		if err := uow.NotificationRepository().MarkAsRead(ctx, notificationID); err != nil {
			return err
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// RegisterNotificationWriter subscribes a writer that persists queued
// notification records after the producing transaction commits. The write is
// attempted synchronously; a failure is logged and swallowed, never
// propagated back into the flow that produced it.
func RegisterNotificationWriter(bus *events.Bus, repo NotificationRepository) {
	bus.Subscribe(events.EventTypeNotificationQueued, func(ctx context.Context, event events.Event) {
		queued, ok := event.(events.NotificationQueuedEvent)
		if !ok || queued.Notification == nil {
			return
		}

		if err := repo.Create(ctx, queued.Notification); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userID": queued.Notification.UserID,
				"type":   queued.Notification.Type,
			}).Warn("Failed to write notification record")
		}
	})
}
