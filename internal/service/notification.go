package service

import (
	"context"
	"errors"

	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

// NotificationService handles read-state actions on the notification channel.
type NotificationService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(s *store.Store, log *logger.Logger) *NotificationService {
	return &NotificationService{store: s, logger: log}
}

// MarkRead marks a single notification as read and returns the
// recomputed unread count. Marking an already-read notification
// succeeds without change. Another user's notification is not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, notificationID string) (*model.NotificationReadResult, error) {
	_, span := tracing.Tracer("service").Start(ctx, "notification.mark_read")
	defer span.End()

	var unread int

	err := s.store.Update(func(tx *store.Txn) error {
		if err := tx.MarkNotificationRead(actor.ID, notificationID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFound("Notification not found")
			}
			return Unexpected(err)
		}
		var err error
		unread, err = tx.UnreadNotificationsCount(actor.ID)
		if err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.NotificationReadResult{
		Status:         model.StatusSuccess,
		NotificationID: notificationID,
		UnreadCount:    unread,
	}, nil
}

// MarkAllRead marks every unread notification for the actor as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (*model.NotificationReadResult, error) {
	_, span := tracing.Tracer("service").Start(ctx, "notification.mark_all_read")
	defer span.End()

	err := s.store.Update(func(tx *store.Txn) error {
		if _, err := tx.MarkAllNotificationsRead(actor.ID); err != nil {
			return Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.NotificationReadResult{
		Status:      model.StatusSuccess,
		UnreadCount: 0,
	}, nil
}

// List returns the actor's notifications in creation order.
func (s *NotificationService) List(ctx context.Context, actor Actor) ([]model.Notification, error) {
	var out []model.Notification
	err := s.store.View(func(tx *store.Txn) error {
		var err error
		out, err = tx.ListNotifications(actor.ID)
		return err
	})
	return out, err
}
