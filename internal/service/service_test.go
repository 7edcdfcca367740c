package service

import (
	"testing"

	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/pkg/logger"
)

type testEnv struct {
	store         *store.Store
	ledger        *ledger.Ledger
	social        *SocialService
	comments      *CommentService
	chat          *ChatService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.Open(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	log := logger.NewNop()
	led := ledger.New(s)
	sink := NewSink(log)
	return &testEnv{
		store:         s,
		ledger:        led,
		social:        NewSocialService(s, led, sink, log),
		comments:      NewCommentService(s, led, sink, log),
		chat:          NewChatService(s, log),
		notifications: NewNotificationService(s, log),
	}
}

func (e *testEnv) seedUser(t *testing.T, id, username string) Actor {
	t.Helper()
	err := e.store.Update(func(tx *store.Txn) error {
		return tx.PutUser(&model.User{ID: id, Username: username})
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return Actor{ID: id, Username: username}
}

func (e *testEnv) seedPost(t *testing.T, id, authorID string) {
	t.Helper()
	err := e.store.Update(func(tx *store.Txn) error {
		return tx.PutPost(&model.Post{ID: id, AuthorID: authorID, Title: "a post"})
	})
	if err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func (e *testEnv) points(t *testing.T, userID string) int {
	t.Helper()
	u, err := e.ledger.GetUser(userID)
	if err != nil {
		t.Fatalf("get user %s: %v", userID, err)
	}
	return u.Points
}

func (e *testEnv) notificationsFor(t *testing.T, userID string) []model.Notification {
	t.Helper()
	var out []model.Notification
	err := e.store.View(func(tx *store.Txn) error {
		var err error
		out, err = tx.ListNotifications(userID)
		return err
	})
	if err != nil {
		t.Fatalf("list notifications for %s: %v", userID, err)
	}
	return out
}
