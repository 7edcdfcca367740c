// Package handler exposes the socket channels and the seed REST surface.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/middleware"
	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/registry"
	"github.com/storyverse/realtime-platform/internal/service"
	"github.com/storyverse/realtime-platform/internal/session"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/internal/worker"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
)

// Channel names, used for topics on the registry side and labels on the
// metrics side.
const (
	ChannelChat          = "chat"
	ChannelComments      = "comments"
	ChannelLikes         = "likes"
	ChannelFollows       = "follows"
	ChannelNotifications = "notifications"
)

// router maps one parsed action to a service call. It returns the direct
// reply for the requester (nil for none) and the fan-out events to
// dispatch after the reply.
type router func(ctx context.Context, actor service.Actor, a *model.Action) (reply any, events []dispatch.Event, err error)

// SocketHandler upgrades connections and runs the per-channel sessions.
type SocketHandler struct {
	upgrader      websocket.Upgrader
	registry      *registry.Registry
	dispatcher    *dispatch.Dispatcher
	pool          *worker.Pool
	ledger        *ledger.Ledger
	social        *service.SocialService
	comments      *service.CommentService
	chat          *service.ChatService
	notifications *service.NotificationService
	queueSize     int
	logger        *logger.Logger
}

// NewSocketHandler creates the socket handler over the shared registry,
// dispatcher and services.
func NewSocketHandler(
	reg *registry.Registry,
	disp *dispatch.Dispatcher,
	pool *worker.Pool,
	led *ledger.Ledger,
	social *service.SocialService,
	comments *service.CommentService,
	chat *service.ChatService,
	notifications *service.NotificationService,
	queueSize int,
	log *logger.Logger,
) *SocketHandler {
	return &SocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Cross-origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registry:      reg,
		dispatcher:    disp,
		pool:          pool,
		ledger:        led,
		social:        social,
		comments:      comments,
		chat:          chat,
		notifications: notifications,
		queueSize:     queueSize,
		logger:        log,
	}
}

// identify resolves the authenticated user behind the request against
// the ledger. The auth middleware guarantees a user ID is present; a
// token for a user the store has never seen is still refused.
func (h *SocketHandler) identify(r *http.Request) (session.Identity, error) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return session.Identity{}, session.ErrAnonymous
	}
	user, err := h.ledger.GetUser(userID)
	if err != nil {
		return session.Identity{}, err
	}
	return session.Identity{ID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}

// serve runs the common channel lifecycle: identify, upgrade, subscribe,
// pump, and tear down. Topics are joined before the read loop starts so
// no fan-out for the session is missed, and left via UnsubscribeAll
// before the connection closes.
func (h *SocketHandler) serve(w http.ResponseWriter, r *http.Request, channel string, topics []string, route router) {
	identity, err := h.identify(r)
	if err != nil {
		metrics.ConnectionsRefused.WithLabelValues(channel).Inc()
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, session.ErrAnonymous) {
			writeError(w, http.StatusUnauthorized, "unknown identity")
			return
		}
		writeError(w, http.StatusInternalServerError, "identity lookup failed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.ConnectionsRefused.WithLabelValues(channel).Inc()
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess, err := session.New(conn, identity, channel, h.queueSize, func(s *session.Session) {
		h.registry.UnsubscribeAll(s)
	}, h.logger)
	if err != nil {
		metrics.ConnectionsRefused.WithLabelValues(channel).Inc()
		_ = conn.Close()
		return
	}

	for _, topic := range topics {
		h.registry.Subscribe(topic, sess)
	}

	sess.Run(r.Context(), h.receiver(channel, route))
}

// receiver adapts a channel router to the session's read loop. Frames
// from one socket are handled strictly in arrival order; only the store
// work inside the router runs through the bounded pool.
func (h *SocketHandler) receiver(channel string, route router) session.Receiver {
	return func(ctx context.Context, s *session.Session, raw []byte) {
		start := time.Now()

		var action model.Action
		if err := json.Unmarshal(raw, &action); err != nil {
			s.Send(model.ErrorResult("invalid message format"))
			metrics.RecordAction(channel, "invalid", model.StatusError, time.Since(start).Seconds())
			return
		}

		actor := service.Actor(s.Identity())

		var reply any
		var events []dispatch.Event
		err := h.pool.Do(ctx, func() error {
			var rerr error
			reply, events, rerr = route(ctx, actor, &action)
			return rerr
		})

		status := model.StatusSuccess
		if err != nil {
			switch service.KindOf(err) {
			case service.KindUnauthorized:
				// Acting on someone else's resource is ignored, not answered.
				status = model.StatusError
			default:
				status = model.StatusError
				s.Send(model.ErrorResult(err.Error()))
			}
			metrics.RecordAction(channel, action.Action, status, time.Since(start).Seconds())
			return
		}

		if reply != nil {
			s.Send(reply)
		}
		h.dispatcher.DispatchAll(events)
		metrics.RecordAction(channel, action.Action, status, time.Since(start).Seconds())
	}
}

// Chat handles GET /ws/chat.
func (h *SocketHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.serve(w, r, ChannelChat, []string{dispatch.UserTopic(userID)}, h.routeChat)
}

func (h *SocketHandler) routeChat(ctx context.Context, actor service.Actor, a *model.Action) (any, []dispatch.Event, error) {
	switch a.Action {
	case model.ActionSendMessage:
		if err := middleware.ValidateContent(a.Content); err != nil {
			return nil, nil, service.Invalid(err.Error())
		}
		data, events, err := h.chat.SendMessage(ctx, actor, a.RecipientID, a.Content)
		if err != nil {
			return nil, nil, err
		}
		return model.MessageFrame{Type: model.FrameMessageSent, MessageData: *data}, events, nil

	case model.ActionMarkRead:
		res, err := h.chat.MarkMessagesRead(ctx, actor, a.ConversationID)
		if err != nil {
			return nil, nil, err
		}
		return res, nil, nil

	default:
		return nil, nil, service.UnknownAction(a.Action)
	}
}

// Comments handles GET /ws/posts/{postID}/comments.
func (h *SocketHandler) Comments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	h.serve(w, r, ChannelComments, []string{dispatch.PostTopic(postID)},
		func(ctx context.Context, actor service.Actor, a *model.Action) (any, []dispatch.Event, error) {
			return h.routeComments(ctx, actor, postID, a)
		})
}

func (h *SocketHandler) routeComments(ctx context.Context, actor service.Actor, postID string, a *model.Action) (any, []dispatch.Event, error) {
	switch a.Action {
	case model.ActionAddComment:
		if err := middleware.ValidateContent(a.Content); err != nil {
			return nil, nil, service.Invalid(err.Error())
		}
		// The requester is subscribed to the post topic, so the comment
		// frame broadcast reaches them too; no direct reply.
		_, events, err := h.comments.AddComment(ctx, actor, postID, a.Content, a.ParentID)
		if err != nil {
			return nil, nil, err
		}
		return nil, events, nil

	default:
		return nil, nil, service.UnknownAction(a.Action)
	}
}

// Likes handles GET /ws/likes.
func (h *SocketHandler) Likes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, ChannelLikes, nil, h.routeLikes)
}

func (h *SocketHandler) routeLikes(ctx context.Context, actor service.Actor, a *model.Action) (any, []dispatch.Event, error) {
	switch a.Action {
	case model.ActionLike:
		res, events, err := h.social.Like(ctx, actor, a.PostID)
		if err != nil {
			return nil, nil, err
		}
		return res, events, nil

	case model.ActionUnlike:
		res, events, err := h.social.Unlike(ctx, actor, a.PostID)
		if err != nil {
			return nil, nil, err
		}
		return res, events, nil

	default:
		return nil, nil, service.UnknownAction(a.Action)
	}
}

// Follows handles GET /ws/follows.
func (h *SocketHandler) Follows(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, ChannelFollows, nil, h.routeFollows)
}

func (h *SocketHandler) routeFollows(ctx context.Context, actor service.Actor, a *model.Action) (any, []dispatch.Event, error) {
	switch a.Action {
	case model.ActionFollow:
		res, events, err := h.social.Follow(ctx, actor, a.UserID)
		if err != nil {
			return nil, nil, err
		}
		return res, events, nil

	case model.ActionUnfollow:
		res, events, err := h.social.Unfollow(ctx, actor, a.UserID)
		if err != nil {
			return nil, nil, err
		}
		return res, events, nil

	default:
		return nil, nil, service.UnknownAction(a.Action)
	}
}

// Notifications handles GET /ws/notifications.
func (h *SocketHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.serve(w, r, ChannelNotifications, []string{dispatch.NotificationsTopic(userID)}, h.routeNotifications)
}

func (h *SocketHandler) routeNotifications(ctx context.Context, actor service.Actor, a *model.Action) (any, []dispatch.Event, error) {
	switch a.Action {
	case model.ActionMarkRead:
		res, err := h.notifications.MarkRead(ctx, actor, a.NotificationID)
		if err != nil {
			return nil, nil, err
		}
		return res, nil, nil

	case model.ActionMarkAllRead:
		res, err := h.notifications.MarkAllRead(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		return res, nil, nil

	default:
		return nil, nil, service.UnknownAction(a.Action)
	}
}
