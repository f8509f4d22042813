package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []domain.Activity
	fail    bool
	delay   time.Duration
}

func (s *recordingSink) Insert(_ context.Context, a *domain.Activity) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail {
		return errors.New("write failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *a)
	return nil
}

func (s *recordingSink) snapshot() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Activity, len(s.entries))
	copy(out, s.entries)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_PreservesOrderPerTarget(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(4, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		if !d.Enqueue(domain.Activity{ID: strconv.Itoa(i), TargetID: "pr_1"}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	waitFor(t, func() bool { return len(sink.snapshot()) == 20 })

	for i, a := range sink.snapshot() {
		if a.ID != strconv.Itoa(i) {
			t.Fatalf("entry %d out of order: %s", i, a.ID)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingSink{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("ur_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("ur_42"); got != first {
			t.Fatalf("shard changed from %d to %d", first, got)
		}
	}
}

func TestDispatcher_EnqueueRejectsWhenFull(t *testing.T) {
	d := NewDispatcher(1, &recordingSink{}, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(domain.Activity{TargetID: "x"}) {
			t.Fatalf("enqueue %d rejected before buffer filled", i)
		}
	}
	if d.Enqueue(domain.Activity{TargetID: "x"}) {
		t.Error("expected enqueue to fail on a full buffer")
	}
}

func TestDispatcher_SinkErrorKeepsWorkerRunning(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := NewDispatcher(1, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.Activity{TargetID: "a"})
	d.Enqueue(domain.Activity{TargetID: "a"})
	waitFor(t, func() bool { return len(d.workers[0]) == 0 })

	cancel()
	d.Wait()
}

func TestDispatcher_ShutdownWritesAcceptedEntries(t *testing.T) {
	sink := &recordingSink{delay: 20 * time.Millisecond}
	d := NewDispatcher(1, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	accepted := 0
	for i := 0; i < 10; i++ {
		if d.Enqueue(domain.Activity{ID: strconv.Itoa(i), TargetID: "pr_1"}) {
			accepted++
		}
	}
	cancel()
	d.Wait()

	if accepted != 10 {
		t.Fatalf("expected 10 accepted, got %d", accepted)
	}
	if got := len(sink.snapshot()); got != accepted {
		t.Fatalf("expected %d written, got %d", accepted, got)
	}
	if d.Enqueue(domain.Activity{TargetID: "pr_1"}) {
		t.Error("expected enqueue to be refused after shutdown")
	}
}
