package model

import (
	"time"
)

// Result statuses for direct replies.
const (
	StatusSuccess = "success"
	StatusInfo    = "info"
	StatusError   = "error"
)

// Server-push frame types.
const (
	FrameNewMessage   = "new_message"
	FrameMessageSent  = "message_sent"
	FrameComment      = "comment"
	FrameNotification = "notification"
)

// StatusResult is the minimal direct reply.
type StatusResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResult builds an error-tagged reply.
func ErrorResult(message string) StatusResult {
	return StatusResult{Status: StatusError, Message: message}
}

// LikeResult is the direct reply to like/unlike.
type LikeResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	LikesCount int    `json:"likes_count"`
}

// FollowResult is the direct reply to follow/unfollow.
type FollowResult struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	FollowersCount int    `json:"followers_count"`
}

// MarkReadResult is the direct reply to mark_read on a conversation.
type MarkReadResult struct {
	Status string `json:"status"`
}

// NotificationReadResult is the direct reply to mark_read / mark_all_read
// on the notification channel.
type NotificationReadResult struct {
	Status         string `json:"status"`
	NotificationID string `json:"notification_id,omitempty"`
	UnreadCount    int    `json:"unread_count"`
}

// MessageData is the chat message payload delivered over the wire.
type MessageData struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	RecipientID    string `json:"recipient_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
}

// CommentData is the comment payload broadcast to a post topic.
type CommentData struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	ParentID  string `json:"parent_id,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// NotificationData is the notification payload pushed to a recipient.
type NotificationData struct {
	ID              string `json:"id"`
	SenderID        string `json:"sender_id"`
	SenderUsername  string `json:"sender_username"`
	Type            string `json:"notification_type"`
	Text            string `json:"text"`
	RelatedObjectID string `json:"related_object_id,omitempty"`
	IsRead          bool   `json:"is_read"`
	CreatedAt       string `json:"created_at"`
}

// MessageFrame wraps a message payload in a typed server-push frame.
type MessageFrame struct {
	Type        string      `json:"type"`
	MessageData MessageData `json:"message_data"`
}

// CommentFrame wraps a comment payload in a typed server-push frame.
type CommentFrame struct {
	Type        string      `json:"type"`
	CommentData CommentData `json:"comment_data"`
}

// NotificationFrame wraps a notification payload in a typed server-push frame.
type NotificationFrame struct {
	Type             string           `json:"type"`
	NotificationData NotificationData `json:"notification_data"`
}

// WireTime formats a timestamp the way payloads carry it.
func WireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
