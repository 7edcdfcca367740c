package service

import (
	"context"
	"testing"

	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
)

func TestSendMessageCreatesConversationOnce(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	bob := env.seedUser(t, "u2", "bob")
	ctx := context.Background()

	first, _, err := env.chat.SendMessage(ctx, ann, "u2", "hi bob")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	// The reply in the other direction lands in the same conversation.
	second, _, err := env.chat.SendMessage(ctx, bob, "u1", "hi ann")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if first.ConversationID != second.ConversationID {
		t.Fatalf("conversations differ: %s vs %s", first.ConversationID, second.ConversationID)
	}

	env.store.View(func(tx *store.Txn) error {
		msgs, err := tx.ListMessages(first.ConversationID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("messages = %d, want 2", len(msgs))
		}
		if msgs[0].Content != "hi bob" || msgs[1].Content != "hi ann" {
			t.Fatalf("wrong order: %q then %q", msgs[0].Content, msgs[1].Content)
		}
		return nil
	})
}

func TestSendMessageEventTargetsRecipient(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")

	data, events, err := env.chat.SendMessage(context.Background(), ann, "u2", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Topic != "user:u2" {
		t.Fatalf("topic = %s, want user:u2", events[0].Topic)
	}
	frame, ok := events[0].Payload.(model.MessageFrame)
	if !ok || frame.Type != model.FrameNewMessage {
		t.Fatalf("payload = %#v", events[0].Payload)
	}
	if frame.MessageData.ID != data.ID || frame.MessageData.SenderUsername != "ann" {
		t.Fatalf("frame data = %+v", frame.MessageData)
	}
	if data.IsRead {
		t.Fatal("new message marked read")
	}
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")

	_, _, err := env.chat.SendMessage(context.Background(), ann, "ghost", "hello")
	if KindOf(err) != KindNotFound || err.Error() != "Recipient not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestMarkMessagesReadIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	bob := env.seedUser(t, "u2", "bob")
	ctx := context.Background()

	data, _, err := env.chat.SendMessage(ctx, ann, "u2", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, err := env.chat.MarkMessagesRead(ctx, bob, data.ConversationID)
		if err != nil {
			t.Fatalf("mark read pass %d: %v", i, err)
		}
		if res.Status != model.StatusSuccess {
			t.Fatalf("result = %+v", res)
		}
	}

	n, err := env.chat.UnreadCount(ctx, bob, data.ConversationID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 0 {
		t.Fatalf("unread = %d, want 0", n)
	}
}

func TestMarkMessagesReadNonParticipant(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")
	eve := env.seedUser(t, "u3", "eve")
	ctx := context.Background()

	data, _, err := env.chat.SendMessage(ctx, ann, "u2", "secret")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err = env.chat.MarkMessagesRead(ctx, eve, data.ConversationID)
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("kind = %v, want KindUnauthorized", KindOf(err))
	}

	// The messages stay unread for the real recipient.
	n, err := env.chat.UnreadCount(ctx, Actor{ID: "u2"}, data.ConversationID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 1 {
		t.Fatalf("unread = %d, want 1", n)
	}
}

func TestMarkMessagesReadUnknownConversation(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")

	_, err := env.chat.MarkMessagesRead(context.Background(), ann, "ghost")
	if KindOf(err) != KindNotFound || err.Error() != "Conversation not found" {
		t.Fatalf("err = %v", err)
	}
}
