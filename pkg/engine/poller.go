package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Reconciler runs one polling cycle.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// Poller drives a Reconciler from a heartbeat. A cycle runs on the first
// heartbeat at or after the next poll deadline, which then moves one
// interval ahead.
type Poller struct {
	target    Reconciler
	interval  time.Duration
	heartbeat time.Duration
	now       func() time.Time

	mu       sync.Mutex
	nextPoll time.Time
}

// NewPoller creates a Poller. The first heartbeat always polls.
func NewPoller(target Reconciler, interval, heartbeat time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if heartbeat <= 0 || heartbeat > interval {
		heartbeat = min(time.Second, interval)
	}
	return &Poller{
		target:    target,
		interval:  interval,
		heartbeat: heartbeat,
		now:       time.Now,
	}
}

// Run beats until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().
		Dur("interval", p.interval).
		Dur("heartbeat", p.heartbeat).
		Msg("Starting poller")

	ticker := time.NewTicker(p.heartbeat)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick is one heartbeat. It reports whether a cycle ran.
func (p *Poller) Tick(ctx context.Context) bool {
	now := p.now()

	p.mu.Lock()
	if now.Before(p.nextPoll) {
		p.mu.Unlock()
		return false
	}
	p.nextPoll = now.Add(p.interval)
	p.mu.Unlock()

	// Failures are logged by the reconciler; the next deadline retries.
	_ = p.target.Reconcile(ctx)
	return true
}

// Accelerate moves the next poll to at most d from now. It never delays
// a poll.
func (p *Poller) Accelerate(d time.Duration) {
	at := p.now().Add(d)

	p.mu.Lock()
	defer p.mu.Unlock()
	if at.Before(p.nextPoll) {
		p.nextPoll = at
	}
}

// NextPoll returns the current deadline.
func (p *Poller) NextPoll() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextPoll
}
