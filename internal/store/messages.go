package store

import (
	"encoding/json"
	"fmt"

	"github.com/storyverse/realtime-platform/internal/model"
)

// AppendMessage writes a message under its conversation. Message IDs are
// UUIDv7, so iteration order under the conversation prefix is creation
// order.
func (t *Txn) AppendMessage(m *model.Message) error {
	return t.setJSON(msgKey(m.ConversationID, m.ID), m)
}

// ListMessages returns all messages in a conversation in creation order.
func (t *Txn) ListMessages(convID string) ([]model.Message, error) {
	var out []model.Message
	err := t.forEach(msgPrefix(convID), func(_, value []byte) error {
		var m model.Message
		if err := json.Unmarshal(value, &m); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// MarkMessagesRead flips is_read on every unread message addressed to
// recipientID in the conversation. Already-read messages are untouched;
// the flag never transitions back. Returns how many were flipped.
func (t *Txn) MarkMessagesRead(convID, recipientID string) (int, error) {
	msgs, err := t.ListMessages(convID)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range msgs {
		m := &msgs[i]
		if m.RecipientID != recipientID || m.IsRead {
			continue
		}
		m.IsRead = true
		if err := t.setJSON(msgKey(convID, m.ID), m); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// UnreadMessagesCount counts unread messages addressed to recipientID in
// the conversation. Recomputed by scan on demand.
func (t *Txn) UnreadMessagesCount(convID, recipientID string) (int, error) {
	msgs, err := t.ListMessages(convID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range msgs {
		if m.RecipientID == recipientID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// LastMessage returns the newest message in a conversation, or ErrNotFound
// when the conversation has none yet. Callers must handle absence; a
// conversation can briefly exist without messages.
func (t *Txn) LastMessage(convID string) (*model.Message, error) {
	msgs, err := t.ListMessages(convID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return &msgs[len(msgs)-1], nil
}
