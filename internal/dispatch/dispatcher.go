// Package dispatch routes fan-out events to topic subscribers.
//
// The dispatcher performs no persistence; it is a routing function over
// already-persisted facts. Delivery is fire-and-forget per subscriber: a
// slow or closed subscriber never blocks or fails delivery to the rest.
package dispatch

import (
	"strings"

	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/registry"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
)

// Topic builders. Topics are plain strings of the form kind:id.

// PostTopic is the broadcast channel for everyone viewing a post.
func PostTopic(postID string) string { return "post:" + postID }

// UserTopic is the private delivery channel for one user's chat sockets.
func UserTopic(userID string) string { return "user:" + userID }

// NotificationsTopic is the notification push channel for one user.
func NotificationsTopic(userID string) string { return "notifications:" + userID }

func topicKind(topic string) string {
	if i := strings.IndexByte(topic, ':'); i > 0 {
		return topic[:i]
	}
	return topic
}

// Event is one fan-out event produced by an action handler.
type Event struct {
	Topic   string
	Payload any
}

// Publisher forwards events to peer instances. Optional.
type Publisher interface {
	Publish(topic string, payload any)
}

// Dispatcher resolves a topic's subscribers and enqueues the payload on
// each of them.
type Dispatcher struct {
	registry *registry.Registry
	bridge   Publisher
	logger   *logger.Logger
}

// New creates a dispatcher over the registry.
func New(reg *registry.Registry, log *logger.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, logger: log}
}

// SetBridge attaches a cross-instance publisher. Events dispatched
// locally are also forwarded to peers; events arriving from peers go
// through DispatchLocal only, so they never loop back.
func (d *Dispatcher) SetBridge(p Publisher) {
	d.bridge = p
}

// Dispatch delivers the payload to every current subscriber of the topic
// and forwards it across the bridge when one is attached.
func (d *Dispatcher) Dispatch(topic string, payload any) {
	d.DispatchLocal(topic, payload)
	if d.bridge != nil {
		d.bridge.Publish(topic, payload)
	}
}

// DispatchLocal delivers the payload to local subscribers only.
func (d *Dispatcher) DispatchLocal(topic string, payload any) {
	subs := d.registry.Subscribers(topic)
	for _, sub := range subs {
		sub.Send(payload)
	}
	metrics.FanoutEventsTotal.WithLabelValues(topicKind(topic)).Inc()
	d.logger.Debug("dispatched fan-out event",
		zap.String("topic", topic),
		zap.Int("subscribers", len(subs)),
	)
}

// DispatchAll delivers a batch of events in order.
func (d *Dispatcher) DispatchAll(events []Event) {
	for _, ev := range events {
		d.Dispatch(ev.Topic, ev.Payload)
	}
}
