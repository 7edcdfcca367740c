package registry

import (
	"fmt"
	"sync"
	"testing"
)

type fakeSub struct {
	mu       sync.Mutex
	payloads []any
}

func (f *fakeSub) Send(payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeSub) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func TestSubscribeAndSubscribers(t *testing.T) {
	r := New()
	a := &fakeSub{}
	b := &fakeSub{}

	r.Subscribe("post:1", a)
	r.Subscribe("post:1", b)
	r.Subscribe("post:2", a)

	if got := len(r.Subscribers("post:1")); got != 2 {
		t.Fatalf("post:1 subscribers = %d, want 2", got)
	}
	if got := len(r.Subscribers("post:2")); got != 1 {
		t.Fatalf("post:2 subscribers = %d, want 1", got)
	}
	if got := len(r.Subscribers("post:3")); got != 0 {
		t.Fatalf("post:3 subscribers = %d, want 0", got)
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	r := New()
	a := &fakeSub{}

	r.Subscribe("post:1", a)
	r.Subscribe("post:1", a)

	if got := len(r.Subscribers("post:1")); got != 1 {
		t.Fatalf("subscribers = %d, want 1 after duplicate subscribe", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	r := New()
	a := &fakeSub{}
	b := &fakeSub{}

	r.Subscribe("post:1", a)
	r.Subscribe("post:1", b)
	r.Unsubscribe("post:1", a)

	subs := r.Subscribers("post:1")
	if len(subs) != 1 || subs[0] != b {
		t.Fatalf("expected only b to remain, got %d subscribers", len(subs))
	}

	// Unsubscribing a session that never joined is a no-op.
	r.Unsubscribe("post:1", a)
	r.Unsubscribe("post:9", b)
	if got := len(r.Subscribers("post:1")); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	r := New()
	a := &fakeSub{}
	b := &fakeSub{}

	r.Subscribe("post:1", a)
	r.Subscribe("post:2", a)
	r.Subscribe("notifications:u1", a)
	r.Subscribe("post:1", b)

	r.UnsubscribeAll(a)

	for _, topic := range []string{"post:2", "notifications:u1"} {
		if got := len(r.Subscribers(topic)); got != 0 {
			t.Errorf("%s subscribers = %d, want 0", topic, got)
		}
	}
	if got := len(r.Subscribers("post:1")); got != 1 {
		t.Errorf("post:1 subscribers = %d, want 1", got)
	}

	// Empty topics are dropped entirely.
	if got := r.TopicCount(); got != 1 {
		t.Errorf("TopicCount = %d, want 1", got)
	}
}

func TestSubscribersReturnsSnapshot(t *testing.T) {
	r := New()
	a := &fakeSub{}
	r.Subscribe("post:1", a)

	subs := r.Subscribers("post:1")
	r.Unsubscribe("post:1", a)

	// The earlier snapshot is unaffected by the later unsubscribe.
	if len(subs) != 1 {
		t.Fatalf("snapshot length = %d, want 1", len(subs))
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := &fakeSub{}
			topic := fmt.Sprintf("post:%d", i%4)
			for j := 0; j < 100; j++ {
				r.Subscribe(topic, sub)
				for _, s := range r.Subscribers(topic) {
					s.Send(j)
				}
				r.UnsubscribeAll(sub)
			}
		}(i)
	}
	wg.Wait()

	if got := r.TopicCount(); got != 0 {
		t.Fatalf("TopicCount = %d, want 0 after all unsubscribed", got)
	}
}
