package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	in "event_scraper/core/port/in"
)

type blockingIngest struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingIngest) RunBatch(ctx context.Context) (*in.BatchReport, error) {
	n := b.calls.Add(1)
	if n == 1 {
		close(b.started)
	}
	<-b.release
	return &in.BatchReport{RunID: "run-1", Inserted: 3}, nil
}

func TestCoalescedIngestSharesRun(t *testing.T) {
	inner := &blockingIngest{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoalescedIngest(inner)

	var wg sync.WaitGroup
	reports := make([]*in.BatchReport, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		reports[0], _ = c.RunBatch(context.Background())
	}()
	<-inner.started

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = c.RunBatch(context.Background())
		}(i)
	}

	// Give the waiters time to join the running batch.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Errorf("RunBatch calls = %d, want 1", got)
	}
	for i, r := range reports {
		if r == nil || r.RunID != "run-1" {
			t.Errorf("report %d = %+v", i, r)
		}
	}
}

func TestCoalescedIngestWaiterCancel(t *testing.T) {
	inner := &blockingIngest{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoalescedIngest(inner)

	go func() { _, _ = c.RunBatch(context.Background()) }()
	<-inner.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.RunBatch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	close(inner.release)
}

func TestCoalescedIngestSequentialRuns(t *testing.T) {
	inner := &blockingIngest{started: make(chan struct{}), release: make(chan struct{})}
	close(inner.release)
	c := NewCoalescedIngest(inner)

	for i := 0; i < 2; i++ {
		if _, err := c.RunBatch(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("RunBatch calls = %d, want 2", got)
	}
}
