package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
)

// Hub fans control writes out to in-process subscribers such as event
// streams. Slow subscribers miss events rather than block the engine.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan device.StateEvent]struct{}
	buffer      int
}

// NewHub creates a Hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subscribers: make(map[chan device.StateEvent]struct{}),
		buffer:      buffer,
	}
}

// Subscribe returns a channel receiving every subsequent write.
func (h *Hub) Subscribe() chan device.StateEvent {
	ch := make(chan device.StateEvent, h.buffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (h *Hub) Unsubscribe(ch chan device.StateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Publish implements device.Publisher.
func (h *Hub) Publish(ctx context.Context, ev device.StateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			log.Debug().Int("control", ev.Control.ID).Msg("Subscriber full, event dropped")
		}
	}
}

// Fanout publishes to several publishers in order.
type Fanout []device.Publisher

// Publish implements device.Publisher.
func (f Fanout) Publish(ctx context.Context, ev device.StateEvent) {
	for _, p := range f {
		p.Publish(ctx, ev)
	}
}
