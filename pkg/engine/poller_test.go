package engine

import (
	"context"
	"testing"
	"time"
)

type countingReconciler struct {
	runs int
}

func (r *countingReconciler) Reconcile(ctx context.Context) error {
	r.runs++
	return nil
}

func newTestPoller(interval time.Duration) (*Poller, *countingReconciler, *time.Time) {
	r := &countingReconciler{}
	p := NewPoller(r, interval, time.Second)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	return p, r, &clock
}

func TestPoller_Tick(t *testing.T) {
	p, r, clock := newTestPoller(10 * time.Second)
	ctx := context.Background()

	if !p.Tick(ctx) {
		t.Fatal("first heartbeat should poll")
	}
	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{time.Second, false},
		{8 * time.Second, false},
		{time.Second, true},
		{5 * time.Second, false},
		{5 * time.Second, true},
	}
	for i, s := range steps {
		*clock = clock.Add(s.advance)
		if got := p.Tick(ctx); got != s.want {
			t.Errorf("step %d: Tick = %v, want %v", i, got, s.want)
		}
	}
	if r.runs != 3 {
		t.Errorf("runs = %d, want 3", r.runs)
	}
}

func TestPoller_AccelerateOnlyShortens(t *testing.T) {
	p, r, clock := newTestPoller(10 * time.Second)
	ctx := context.Background()
	p.Tick(ctx)

	deadline := p.NextPoll()
	p.Accelerate(time.Minute)
	if !p.NextPoll().Equal(deadline) {
		t.Errorf("Accelerate delayed the poll to %v", p.NextPoll())
	}

	p.Accelerate(time.Second)
	if want := clock.Add(time.Second); !p.NextPoll().Equal(want) {
		t.Errorf("NextPoll = %v, want %v", p.NextPoll(), want)
	}

	*clock = clock.Add(time.Second)
	if !p.Tick(ctx) || r.runs != 2 {
		t.Errorf("accelerated poll did not run (runs = %d)", r.runs)
	}
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, time.Hour, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.runs != 1 {
		t.Errorf("runs = %d, want 1", r.runs)
	}
}
