package nats

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/metrics"
)

// FanoutSubject carries fan-out events between instances.
const FanoutSubject = "storyverse.fanout"

// envelope is the wire form of a bridged fan-out event. InstanceID lets
// each instance drop its own events on the way back in.
type envelope struct {
	InstanceID string          `json:"instance_id"`
	Topic      string          `json:"topic"`
	Payload    json.RawMessage `json:"payload"`
}

// Bridge replicates fan-out events across instances over plain NATS
// pub/sub. The registry itself stays in-process; the bridge only widens
// delivery to subscribers connected elsewhere.
type Bridge struct {
	client     *Client
	instanceID string
	sub        *nats.Subscription
	logger     *logger.Logger
}

// NewBridge creates a bridge over an established client.
func NewBridge(client *Client, log *logger.Logger) *Bridge {
	return &Bridge{
		client:     client,
		instanceID: uuid.New().String(),
		logger:     log,
	}
}

// Publish forwards a locally-dispatched event to peer instances.
// Fire-and-forget: a marshal or publish failure is logged and dropped,
// never surfaced to the triggering requester.
func (b *Bridge) Publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("failed to marshal bridged payload", zap.Error(err))
		return
	}
	env := envelope{InstanceID: b.instanceID, Topic: topic, Payload: data}
	raw, err := json.Marshal(&env)
	if err != nil {
		b.logger.Warn("failed to marshal bridge envelope", zap.Error(err))
		return
	}
	if err := b.client.Conn().Publish(FanoutSubject, raw); err != nil {
		b.logger.Warn("failed to publish bridged event", zap.Error(err))
		return
	}
	metrics.BridgeEventsTotal.WithLabelValues("out").Inc()
}

// Start subscribes to the fan-out subject and feeds peer events to
// deliver. Events published by this instance are skipped.
func (b *Bridge) Start(deliver func(topic string, payload json.RawMessage)) error {
	sub, err := b.client.Conn().Subscribe(FanoutSubject, func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.logger.Warn("invalid bridge envelope", zap.Error(err))
			return
		}
		if env.InstanceID == b.instanceID {
			return
		}
		metrics.BridgeEventsTotal.WithLabelValues("in").Inc()
		deliver(env.Topic, env.Payload)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to fan-out subject: %w", err)
	}
	b.sub = sub
	b.logger.Info("fan-out bridge started", zap.String("instance_id", b.instanceID))
	return nil
}

// Stop drains the subscription.
func (b *Bridge) Stop() {
	if b.sub != nil {
		_ = b.sub.Drain()
	}
}
