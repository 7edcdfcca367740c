package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
)

// NotificationSink persists notifications produced as handler side
// effects. It writes through the caller's unit of work so the
// notification commits (or rolls back) with the action that caused it.
type NotificationSink interface {
	// Notify stores the notification unless it is self-addressed.
	// Returns false when suppressed.
	Notify(tx *store.Txn, n *model.Notification) (bool, error)
}

// Sink is the store-backed NotificationSink.
type Sink struct {
	logger *logger.Logger
}

// NewSink creates a notification sink.
func NewSink(log *logger.Logger) *Sink {
	return &Sink{logger: log}
}

// Notify implements NotificationSink. Self-notification is suppressed
// uniformly: a user never gets notified about their own action.
func (s *Sink) Notify(tx *store.Txn, n *model.Notification) (bool, error) {
	if n.RecipientID == n.SenderID {
		return false, nil
	}
	if n.ID == "" {
		n.ID = uuid.Must(uuid.NewV7()).String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.IsRead = false

	if err := tx.PutNotification(n); err != nil {
		return false, err
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Type)).Inc()
	s.logger.Debug("notification created",
		zap.String("type", string(n.Type)),
		zap.String("recipient_id", n.RecipientID),
	)
	return true, nil
}

// notificationData shapes a stored notification for the wire.
func notificationData(n *model.Notification, senderUsername string) model.NotificationData {
	return model.NotificationData{
		ID:              n.ID,
		SenderID:        n.SenderID,
		SenderUsername:  senderUsername,
		Type:            string(n.Type),
		Text:            n.Text,
		RelatedObjectID: n.RelatedObjectID,
		IsRead:          n.IsRead,
		CreatedAt:       model.WireTime(n.CreatedAt),
	}
}
