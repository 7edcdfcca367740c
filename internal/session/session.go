// Package session represents one live socket bound to an authenticated
// identity.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// ErrAnonymous reports a connection that arrived without an identity.
// Such a session is refused: it goes straight from connecting to closed
// and is never accepted.
var ErrAnonymous = errors.New("session requires an authenticated identity")

// Identity is the authenticated user bound to a session.
type Identity struct {
	ID       string
	Username string
	Avatar   string
}

// Receiver handles one raw inbound frame. The session calls it from its
// read loop, so frames from one socket are processed strictly in arrival
// order.
type Receiver func(ctx context.Context, s *Session, raw []byte)

// Session is one live socket. While open it may join topics and receive
// enqueued payloads; once closed, further sends are dropped silently.
type Session struct {
	identity Identity
	channel  string

	conn   *websocket.Conn
	send   chan any
	done   chan struct{}
	closed atomic.Bool

	onClose func(*Session)
	logger  *logger.Logger
}

// New constructs a session over an accepted connection. A session without
// an identity is refused with ErrAnonymous; the caller still owns the
// connection in that case and must close it.
func New(conn *websocket.Conn, identity Identity, channel string, queueSize int, onClose func(*Session), log *logger.Logger) (*Session, error) {
	if identity.ID == "" {
		return nil, ErrAnonymous
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Session{
		identity: identity,
		channel:  channel,
		conn:     conn,
		send:     make(chan any, queueSize),
		done:     make(chan struct{}),
		onClose:  onClose,
		logger:   log.WithConnection(channel, identity.ID),
	}, nil
}

// Identity returns the authenticated identity bound to the session.
func (s *Session) Identity() Identity {
	return s.identity
}

// Channel returns the logical channel the session is bound to.
func (s *Session) Channel() string {
	return s.channel
}

// Send enqueues a payload for delivery, best effort. It never blocks:
// payloads for a closed session are dropped silently (a harmless race
// with in-flight fan-out), and a full queue drops its oldest payload to
// make room rather than stall the dispatcher.
func (s *Session) Send(payload any) {
	if s.closed.Load() {
		return
	}
	select {
	case s.send <- payload:
		return
	default:
	}

	select {
	case <-s.send:
		metrics.FanoutDroppedTotal.Inc()
		s.logger.Warn("send queue full, dropping oldest payload")
	default:
	}
	select {
	case s.send <- payload:
	default:
		metrics.FanoutDroppedTotal.Inc()
	}
}

// Run drives the session until the socket closes. The write pump runs in
// its own goroutine; the read loop runs on the calling goroutine and
// feeds frames to receive one at a time. On exit the session is marked
// closed and onClose runs before the connection is torn down, so the
// registry eviction happens ahead of any further dispatch.
func (s *Session) Run(ctx context.Context, receive Receiver) {
	metrics.ConnectionsActive.WithLabelValues(s.channel).Inc()
	defer metrics.ConnectionsActive.WithLabelValues(s.channel).Dec()

	go s.writePump()
	s.readPump(ctx, receive)

	s.closed.Store(true)
	if s.onClose != nil {
		s.onClose(s)
	}
	close(s.done)
	_ = s.conn.Close()
	s.logger.Info("session closed")
}

func (s *Session) readPump(ctx context.Context, receive Receiver) {
	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("unexpected websocket close", zap.Error(err))
			}
			return
		}
		receive(ctx, s, raw)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteJSON(payload); err != nil {
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
