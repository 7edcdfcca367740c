package model

import (
	"time"
)

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
)

// Notification is created by an action handler as a side effect and
// addressed to a single recipient. Never created by the recipient.
type Notification struct {
	ID              string           `json:"id"`
	RecipientID     string           `json:"recipient_id"`
	SenderID        string           `json:"sender_id"`
	Type            NotificationType `json:"notification_type"`
	Text            string           `json:"text"`
	RelatedObjectID string           `json:"related_object_id,omitempty"`
	IsRead          bool             `json:"is_read"`
	CreatedAt       time.Time        `json:"created_at"`
}
