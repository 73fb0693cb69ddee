package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/lms"
)

// Config holds the engine settings.
type Config struct {
	MaxPlaylists int
	Debug        bool

	DisplaySubject string
	DisplayText    string
	DisplaySeconds int

	ExtendedControls bool
	BlankIdleTrack   bool

	// AccelerateTo is how soon the next poll runs after a playlist load.
	AccelerateTo time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxPlaylists:     10,
		DisplaySubject:   "lmsync",
		DisplaySeconds:   5,
		ExtendedControls: true,
		BlankIdleTrack:   true,
		AccelerateTo:     time.Second,
	}
}

// Accelerator shortens the wait until the next poll.
type Accelerator interface {
	Accelerate(d time.Duration)
}

// Snapshot is the state of the last reconciliation cycle.
type Snapshot struct {
	Players   []lms.Player    `json:"players"`
	Groups    []Group         `json:"groups"`
	Playlists []PlaylistEntry `json:"playlists"`
	LastPoll  time.Time       `json:"last_poll"`
	LastError string          `json:"last_error,omitempty"`
}

// Engine reconciles remote player state into controls and turns control
// commands into remote calls. Reconcile and Dispatch never run concurrently.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	inv       lms.Invoker
	store     device.Store
	publisher device.Publisher
	history   device.History
	scheduler Accelerator

	registry *Registry
	catalog  *Catalog
	resolver *Resolver
	players  []lms.Player

	stateMu  sync.RWMutex
	snapshot Snapshot

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets the receiver of control writes.
func WithPublisher(p device.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithHistory records every dispatched command.
func WithHistory(h device.History) Option {
	return func(e *Engine) { e.history = h }
}

// WithScheduler sets the poll scheduler accelerated after playlist loads.
func WithScheduler(a Accelerator) Option {
	return func(e *Engine) { e.scheduler = a }
}

// New creates an Engine.
func New(inv lms.Invoker, store device.Store, cfg Config, opts ...Option) *Engine {
	if cfg.DisplaySeconds <= 0 {
		cfg.DisplaySeconds = 5
	}
	if cfg.AccelerateTo <= 0 {
		cfg.AccelerateTo = time.Second
	}
	e := &Engine{
		cfg:       cfg,
		inv:       inv,
		store:     store,
		publisher: device.NullPublisher{},
		registry:  NewRegistry(store, cfg.ExtendedControls),
		catalog:   NewCatalog(cfg.MaxPlaylists),
		resolver:  NewResolver(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetScheduler sets the poll scheduler after construction.
func (e *Engine) SetScheduler(a Accelerator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler = a
}

// Store returns the control store.
func (e *Engine) Store() device.Store {
	return e.store
}

// Snapshot returns the state of the last cycle without waiting for a
// running one.
func (e *Engine) Snapshot() Snapshot {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return Snapshot{
		Players:   append([]lms.Player(nil), e.snapshot.Players...),
		Groups:    append([]Group(nil), e.snapshot.Groups...),
		Playlists: append([]PlaylistEntry(nil), e.snapshot.Playlists...),
		LastPoll:  e.snapshot.LastPoll,
		LastError: e.snapshot.LastError,
	}
}

// RecentCommands returns the last dispatched commands, newest first.
func (e *Engine) RecentCommands(ctx context.Context, limit int) ([]device.CommandRecord, error) {
	if e.history == nil {
		return []device.CommandRecord{}, nil
	}
	return e.history.Recent(ctx, limit)
}

func (e *Engine) publishSnapshot(errMsg string) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.snapshot = Snapshot{
		Players:   append([]lms.Player(nil), e.players...),
		Groups:    e.registry.Groups(),
		Playlists: e.catalog.Entries(),
		LastPoll:  e.now(),
		LastError: errMsg,
	}
}

// write stores a new state for c when it differs from the stored one, or
// always when forced, and publishes the result.
func (e *Engine) write(ctx context.Context, c *device.Control, nValue int, sValue string, opts device.UpdateOptions) error {
	if !opts.Force && !c.Changed(nValue, sValue, opts) {
		return nil
	}
	wrote, err := e.store.Update(ctx, c.ID, nValue, sValue, opts)
	if err != nil {
		return err
	}
	if !wrote {
		return nil
	}

	updated := *c
	updated.NValue = nValue
	updated.SValue = sValue
	if opts.LevelNames != nil {
		updated.LevelNames = opts.LevelNames
	}
	updated.UpdatedAt = e.now()
	c.NValue, c.SValue, c.LevelNames = updated.NValue, updated.SValue, updated.LevelNames

	log.Debug().
		Int("control", c.ID).
		Str("role", string(c.Role)).
		Int("nvalue", nValue).
		Str("svalue", sValue).
		Bool("forced", opts.Force).
		Msg("Control updated")

	e.publisher.Publish(ctx, device.StateEvent{
		Control:   updated,
		Forced:    opts.Force,
		Timestamp: updated.UpdatedAt,
	})
	return nil
}

// writeID is write for a control known by id. A zero id is an absent slot.
func (e *Engine) writeID(ctx context.Context, id int, nValue int, sValue string, opts device.UpdateOptions) error {
	if id == 0 {
		return nil
	}
	c, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return e.write(ctx, c, nValue, sValue, opts)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// contextLogger returns the logger carried by ctx, or the global logger.
func contextLogger(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
