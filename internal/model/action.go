package model

// Action names accepted over the socket channels.
const (
	ActionSendMessage = "send_message"
	ActionMarkRead    = "mark_read"
	ActionMarkAllRead = "mark_all_read"
	ActionAddComment  = "add_comment"
	ActionLike        = "like"
	ActionUnlike      = "unlike"
	ActionFollow      = "follow"
	ActionUnfollow    = "unfollow"
)

// Action is the tagged envelope clients send over a socket:
// {"action": <name>, ...fields}. Which fields are meaningful depends on
// the action and the channel the socket is bound to.
type Action struct {
	Action         string `json:"action"`
	PostID         string `json:"post_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
	Content        string `json:"content,omitempty"`
	ParentID       string `json:"parent_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}
