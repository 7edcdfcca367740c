package model

import (
	"time"
)

// Conversation is the durable grouping of all messages between exactly two
// identities. Created lazily on first message; the participant set is
// immutable after creation and the conversation is never deleted.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
