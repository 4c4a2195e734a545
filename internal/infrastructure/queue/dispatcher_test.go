package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcher_OneResultPerJobInOrder(t *testing.T) {
	d := NewDispatcher(3, zerolog.Nop())
	boom := errors.New("boom")

	var jobs []Job
	for i := range 10 {
		key := fmt.Sprintf("id-%d", i)
		jobs = append(jobs, Job{Key: key, Run: func(context.Context) error {
			if i%3 == 0 {
				return boom
			}
			return nil
		}})
	}

	results := d.Run(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results for %d jobs", len(results), len(jobs))
	}
	for i, r := range results {
		if r.Key != jobs[i].Key {
			t.Fatalf("result %d has key %q, want %q", i, r.Key, jobs[i].Key)
		}
		if wantErr := i%3 == 0; (r.Err != nil) != wantErr {
			t.Fatalf("result %d err = %v", i, r.Err)
		}
	}
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	d := NewDispatcher(2, zerolog.Nop())
	var running, peak atomic.Int32

	var jobs []Job
	for i := range 8 {
		jobs = append(jobs, Job{Key: fmt.Sprint(i), Run: func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}})
	}
	d.Run(context.Background(), jobs)

	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds 2 workers", peak.Load())
	}
}

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	d := NewDispatcher(4, zerolog.Nop())
	var mu sync.Mutex
	var order []int

	var jobs []Job
	for i := range 5 {
		jobs = append(jobs, Job{Key: "same", Run: func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}})
	}
	d.Run(context.Background(), jobs)

	for i, v := range order {
		if v != i {
			t.Fatalf("same-key jobs ran out of order: %v", order)
		}
	}
}

func TestDispatcher_CancelledContext(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := d.Run(ctx, []Job{{Key: "a", Run: func(context.Context) error { called = true; return nil }}})
	if called {
		t.Fatalf("job ran after cancellation")
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestDispatcher_Empty(t *testing.T) {
	if got := NewDispatcher(0, zerolog.Nop()).Run(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}
