// Package registry maps topic identifiers to the connections subscribed
// to them. Purely in-memory and process-wide; a restart loses every
// subscription and clients are expected to resubscribe on reconnect.
package registry

import (
	"sync"
)

// Subscriber is a connection handle that can accept payloads. Send must
// never block the caller.
type Subscriber interface {
	Send(payload any)
}

// Registry is the single ownership point for the subscriber map. All
// mutation goes through Subscribe/Unsubscribe/UnsubscribeAll under one
// mutex; it is safe for concurrent use from connection goroutines.
type Registry struct {
	mu sync.Mutex

	topics map[string]map[Subscriber]struct{}

	// joined is the reverse index so UnsubscribeAll is O(topics joined),
	// not O(all topics).
	joined map[Subscriber]map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		topics: make(map[string]map[Subscriber]struct{}),
		joined: make(map[Subscriber]map[string]struct{}),
	}
}

// Subscribe adds the connection to a topic.
func (r *Registry) Subscribe(topic string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[Subscriber]struct{})
		r.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	topics, ok := r.joined[sub]
	if !ok {
		topics = make(map[string]struct{})
		r.joined[sub] = topics
	}
	topics[topic] = struct{}{}
}

// Unsubscribe removes the connection from a topic.
func (r *Registry) Unsubscribe(topic string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(topic, sub)
}

// UnsubscribeAll removes the connection from every topic it joined.
// Called on disconnect, before the connection is torn down.
func (r *Registry) UnsubscribeAll(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic := range r.joined[sub] {
		r.remove(topic, sub)
	}
}

func (r *Registry) remove(topic string, sub Subscriber) {
	if subs, ok := r.topics[topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(r.topics, topic)
		}
	}
	if topics, ok := r.joined[sub]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(r.joined, sub)
		}
	}
}

// Subscribers returns the current subscribers of a topic in no particular
// order. The slice is a snapshot; concurrent churn does not mutate it.
func (r *Registry) Subscribers(topic string) []Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.topics[topic]
	out := make([]Subscriber, 0, len(subs))
	for sub := range subs {
		out = append(out, sub)
	}
	return out
}

// TopicCount reports how many topics currently have subscribers.
func (r *Registry) TopicCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}
