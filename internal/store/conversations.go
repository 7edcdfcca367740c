package store

import (
	"errors"

	"github.com/storyverse/realtime-platform/internal/model"
)

// GetConversation retrieves a conversation by ID.
func (t *Txn) GetConversation(id string) (*model.Conversation, error) {
	var c model.Conversation
	if err := t.getJSON(convKey(id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindConversationByPair resolves the conversation between two users,
// regardless of argument order. Returns ErrNotFound when none exists yet.
func (t *Txn) FindConversationByPair(a, b string) (*model.Conversation, error) {
	data, closer, err := t.r.Get(convPairKey(a, b))
	if err != nil {
		return nil, mapPebbleErr(err)
	}
	id := string(data)
	_ = closer.Close()
	return t.GetConversation(id)
}

// CreateConversation writes a conversation and its pair index. The
// participant set is fixed at creation.
func (t *Txn) CreateConversation(c *model.Conversation) error {
	if len(c.Participants) != 2 {
		return errors.New("conversation requires exactly two participants")
	}
	if err := t.setJSON(convKey(c.ID), c); err != nil {
		return err
	}
	return t.set(convPairKey(c.Participants[0], c.Participants[1]), []byte(c.ID))
}
