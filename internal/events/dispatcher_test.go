package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	var mu sync.Mutex
	seen := map[uuid.UUID]Kind{}
	d := NewDispatcher(2, 8, func(_ context.Context, evt RecordUpserted) error {
		mu.Lock()
		seen[evt.LocalID] = evt.Kind
		mu.Unlock()
		return nil
	}, nil)
	d.Start(context.Background())

	a, b := uuid.New(), uuid.New()
	if err := d.Publish(context.Background(), JobUpserted(a)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := d.Publish(context.Background(), CandidateUpserted(b)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	d.Close()

	if seen[a] != KindJob || seen[b] != KindCandidate {
		t.Fatalf("unexpected deliveries %v", seen)
	}
	if err := d.Publish(context.Background(), JobUpserted(a)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1, func(context.Context, RecordUpserted) error { return nil }, nil)

	if err := d.Publish(context.Background(), JobUpserted(uuid.New())); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := d.Publish(context.Background(), JobUpserted(uuid.New())); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_HandlerPanicDoesNotKillWorker(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDispatcher(1, 4, func(context.Context, RecordUpserted) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			panic("boom")
		}
		return errors.New("handled")
	}, nil)
	d.Start(context.Background())

	_ = d.Publish(context.Background(), JobUpserted(uuid.New()))
	_ = d.Publish(context.Background(), JobUpserted(uuid.New()))
	d.Close()

	if calls != 2 {
		t.Fatalf("expected both events handled, got %d", calls)
	}
}
