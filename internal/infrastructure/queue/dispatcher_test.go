package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

type stubGrouping struct {
	mu      sync.Mutex
	grouped []string
	done    chan string
}

func newStubGrouping() *stubGrouping {
	return &stubGrouping{done: make(chan string, 16)}
}

func (s *stubGrouping) CreateGroupsForOrder(_ context.Context, orderID string) ([]*domain.TaskGroup, error) {
	s.mu.Lock()
	s.grouped = append(s.grouped, orderID)
	s.mu.Unlock()
	s.done <- orderID
	return []*domain.TaskGroup{{ID: "grp_1"}}, nil
}

func (s *stubGrouping) AssignDriver(context.Context, string, string, bool) error { return nil }
func (s *stubGrouping) RemoveDriver(context.Context, string) error               { return nil }

func TestDispatcher_ProcessesEnqueuedEvent(t *testing.T) {
	grouping := newStubGrouping()
	d := NewDispatcher(2, grouping, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if err := d.Enqueue(PaymentEvent{OrderID: "ord_1", Provider: "stripe", Reference: "pi_1"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case orderID := <-grouping.done:
		if orderID != "ord_1" {
			t.Errorf("expected ord_1 to be grouped, got %s", orderID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was never processed")
	}
}

func TestDispatcher_SameOrderAlwaysSameShard(t *testing.T) {
	d := NewDispatcher(8, newStubGrouping(), zerolog.Nop())

	first := d.shardIndex("ord_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("ord_42"); got != first {
			t.Fatalf("shard index must be stable, got %d then %d", first, got)
		}
	}
}

func TestDispatcher_EnqueueRejectsWhenShardFull(t *testing.T) {
	// A single worker that is never started, so nothing drains the buffer.
	d := NewDispatcher(1, newStubGrouping(), zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(PaymentEvent{OrderID: fmt.Sprintf("ord_%d", i)}); err != nil {
			t.Fatalf("enqueue %d failed before the buffer was full: %v", i, err)
		}
	}

	err := d.Enqueue(PaymentEvent{OrderID: "ord_overflow"})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull on a full shard, got %v", err)
	}
}
