package store

import (
	"encoding/json"
	"fmt"

	"github.com/storyverse/realtime-platform/internal/model"
)

// PutNotification writes a notification under its recipient.
func (t *Txn) PutNotification(n *model.Notification) error {
	return t.setJSON(notifKey(n.RecipientID, n.ID), n)
}

// GetNotification retrieves a notification scoped to its recipient.
// A notification that exists but belongs to someone else is ErrNotFound
// from the requester's point of view.
func (t *Txn) GetNotification(recipientID, notifID string) (*model.Notification, error) {
	var n model.Notification
	if err := t.getJSON(notifKey(recipientID, notifID), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns a recipient's notifications in creation order.
func (t *Txn) ListNotifications(recipientID string) ([]model.Notification, error) {
	var out []model.Notification
	err := t.forEach(notifPrefix(recipientID), func(_, value []byte) error {
		var n model.Notification
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// UnreadNotificationsCount counts a recipient's unread notifications.
func (t *Txn) UnreadNotificationsCount(recipientID string) (int, error) {
	ns, err := t.ListNotifications(recipientID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, notif := range ns {
		if !notif.IsRead {
			n++
		}
	}
	return n, nil
}

// MarkNotificationRead flips is_read on one notification. Idempotent:
// marking an already-read notification is a no-op.
func (t *Txn) MarkNotificationRead(recipientID, notifID string) error {
	n, err := t.GetNotification(recipientID, notifID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	n.IsRead = true
	return t.PutNotification(n)
}

// MarkAllNotificationsRead flips is_read on every unread notification of
// the recipient. Returns how many were flipped.
func (t *Txn) MarkAllNotificationsRead(recipientID string) (int, error) {
	ns, err := t.ListNotifications(recipientID)
	if err != nil {
		return 0, err
	}
	flipped := 0
	for i := range ns {
		if ns[i].IsRead {
			continue
		}
		ns[i].IsRead = true
		if err := t.PutNotification(&ns[i]); err != nil {
			return 0, err
		}
		flipped++
	}
	return flipped, nil
}
