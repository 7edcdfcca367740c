package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoBoundsConcurrency(t *testing.T) {
	p := New(4)
	var running, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 4 {
		t.Fatalf("peak concurrency = %d, want <= 4", got)
	}
}

func TestDoReturnsFnError(t *testing.T) {
	p := New(1)
	boom := errors.New("boom")
	if err := p.Do(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestDoRespectsContext(t *testing.T) {
	p := New(1)

	// Occupy the only slot.
	release := make(chan struct{})
	go p.Do(context.Background(), func() error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Do(ctx, func() error {
		t.Fatal("fn ran despite canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	close(release)
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(0).Cap(); got != 32 {
		t.Fatalf("Cap = %d, want 32", got)
	}
	if got := New(-1).Cap(); got != 32 {
		t.Fatalf("Cap = %d, want 32", got)
	}
}
