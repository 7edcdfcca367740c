package handler

import (
	"context"
	"testing"

	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/registry"
	"github.com/storyverse/realtime-platform/internal/service"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/internal/worker"
	"github.com/storyverse/realtime-platform/pkg/logger"
)

func newTestSocketHandler(t *testing.T) (*SocketHandler, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	log := logger.NewNop()
	led := ledger.New(s)
	sink := service.NewSink(log)
	reg := registry.New()
	h := NewSocketHandler(
		reg,
		dispatch.New(reg, log),
		worker.New(4),
		led,
		service.NewSocialService(s, led, sink, log),
		service.NewCommentService(s, led, sink, log),
		service.NewChatService(s, log),
		service.NewNotificationService(s, log),
		16,
		log,
	)
	return h, s
}

func seed(t *testing.T, s *store.Store, fn func(tx *store.Txn) error) {
	t.Helper()
	if err := s.Update(fn); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestRouteUnknownAction(t *testing.T) {
	h, _ := newTestSocketHandler(t)
	actor := service.Actor{ID: "u1", Username: "ann"}
	ctx := context.Background()

	routes := map[string]router{
		"chat":          h.routeChat,
		"likes":         h.routeLikes,
		"follows":       h.routeFollows,
		"notifications": h.routeNotifications,
	}
	for name, route := range routes {
		t.Run(name, func(t *testing.T) {
			_, _, err := route(ctx, actor, &model.Action{Action: "dance"})
			if service.KindOf(err) != service.KindUnknownAction {
				t.Fatalf("kind = %v, want KindUnknownAction", service.KindOf(err))
			}
			if err.Error() != "unknown action: dance" {
				t.Fatalf("message = %q", err.Error())
			}
		})
	}
}

func TestRouteLike(t *testing.T) {
	h, s := newTestSocketHandler(t)
	seed(t, s, func(tx *store.Txn) error {
		if err := tx.PutUser(&model.User{ID: "u1", Username: "ann"}); err != nil {
			return err
		}
		if err := tx.PutUser(&model.User{ID: "u2", Username: "bob"}); err != nil {
			return err
		}
		return tx.PutPost(&model.Post{ID: "p1", AuthorID: "u2"})
	})

	reply, events, err := h.routeLikes(context.Background(), service.Actor{ID: "u1", Username: "ann"},
		&model.Action{Action: model.ActionLike, PostID: "p1"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	res, ok := reply.(*model.LikeResult)
	if !ok || res.Status != model.StatusSuccess || res.LikesCount != 1 {
		t.Fatalf("reply = %#v", reply)
	}
	if len(events) != 1 || events[0].Topic != "notifications:u2" {
		t.Fatalf("events = %+v", events)
	}
}

func TestRouteSendMessageValidatesContent(t *testing.T) {
	h, s := newTestSocketHandler(t)
	seed(t, s, func(tx *store.Txn) error {
		return tx.PutUser(&model.User{ID: "u2", Username: "bob"})
	})

	_, _, err := h.routeChat(context.Background(), service.Actor{ID: "u1", Username: "ann"},
		&model.Action{Action: model.ActionSendMessage, RecipientID: "u2", Content: ""})
	if service.KindOf(err) != service.KindInvalid {
		t.Fatalf("kind = %v, want KindInvalid", service.KindOf(err))
	}
}

func TestRouteSendMessageReplyIsEcho(t *testing.T) {
	h, s := newTestSocketHandler(t)
	seed(t, s, func(tx *store.Txn) error {
		if err := tx.PutUser(&model.User{ID: "u1", Username: "ann"}); err != nil {
			return err
		}
		return tx.PutUser(&model.User{ID: "u2", Username: "bob"})
	})

	reply, events, err := h.routeChat(context.Background(), service.Actor{ID: "u1", Username: "ann"},
		&model.Action{Action: model.ActionSendMessage, RecipientID: "u2", Content: "hello"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	frame, ok := reply.(model.MessageFrame)
	if !ok || frame.Type != model.FrameMessageSent {
		t.Fatalf("reply = %#v", reply)
	}
	if len(events) != 1 || events[0].Topic != "user:u2" {
		t.Fatalf("events = %+v", events)
	}
	pushed, ok := events[0].Payload.(model.MessageFrame)
	if !ok || pushed.Type != model.FrameNewMessage {
		t.Fatalf("event payload = %#v", events[0].Payload)
	}
}

func TestRouteCommentsBroadcastsNoDirectReply(t *testing.T) {
	h, s := newTestSocketHandler(t)
	seed(t, s, func(tx *store.Txn) error {
		if err := tx.PutUser(&model.User{ID: "u1", Username: "ann"}); err != nil {
			return err
		}
		if err := tx.PutUser(&model.User{ID: "u2", Username: "bob"}); err != nil {
			return err
		}
		return tx.PutPost(&model.Post{ID: "p1", AuthorID: "u2"})
	})

	reply, events, err := h.routeComments(context.Background(), service.Actor{ID: "u1", Username: "ann"},
		"p1", &model.Action{Action: model.ActionAddComment, Content: "nice"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if reply != nil {
		t.Fatalf("reply = %#v, want nil (requester hears the broadcast)", reply)
	}
	if len(events) != 2 || events[0].Topic != "post:p1" {
		t.Fatalf("events = %+v", events)
	}
}
