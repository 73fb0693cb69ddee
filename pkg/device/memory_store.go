package device

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps controls in process memory. It is used when no database
// is configured and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	controls map[int]*Control
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		controls: make(map[int]*Control),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *Control) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.controls[c.ID]; exists {
		return ErrExists
	}
	cp := clone(c)
	cp.UpdatedAt = s.now()
	s.controls[c.ID] = cp
	c.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (*Control, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.controls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Control, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Control, 0, len(s.controls))
	for _, c := range s.controls {
		out = append(out, *clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) FindByTag(ctx context.Context, tag string) ([]Control, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Control, 0, 6)
	for _, c := range all {
		if c.PlayerTag == tag {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int, nValue int, sValue string, opts UpdateOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controls[id]
	if !ok {
		return false, ErrNotFound
	}
	if !opts.Force && !c.Changed(nValue, sValue, opts) {
		return false, nil
	}

	c.NValue = nValue
	c.SValue = sValue
	if opts.LevelNames != nil {
		c.LevelNames = slices.Clone(opts.LevelNames)
	}
	c.UpdatedAt = s.now()
	return true, nil
}

func clone(c *Control) *Control {
	cp := *c
	cp.LevelNames = slices.Clone(c.LevelNames)
	return &cp
}
