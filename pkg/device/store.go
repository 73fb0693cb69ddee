package device

import "context"

// Store defines the persistence layer for controls. Implementations must
// treat an Update that changes nothing as a no-op unless forced.
type Store interface {
	// Create inserts a new control. The ID must be unused.
	Create(ctx context.Context, c *Control) error

	// Get returns a single control by ID
	Get(ctx context.Context, id int) (*Control, error)

	// List returns all controls ordered by ID
	List(ctx context.Context) ([]Control, error)

	// FindByTag returns the controls tagged with a player id, ordered by ID
	FindByTag(ctx context.Context, tag string) ([]Control, error)

	// Update writes a new state and reports whether a write happened
	Update(ctx context.Context, id int, nValue int, sValue string, opts UpdateOptions) (bool, error)
}

// Publisher receives every control write.
type Publisher interface {
	Publish(ctx context.Context, event StateEvent)
}

// NullPublisher discards events.
type NullPublisher struct{}

// Publish does nothing.
func (NullPublisher) Publish(ctx context.Context, event StateEvent) {}
