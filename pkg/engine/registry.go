package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
)

// Control ids are handed out in blocks. A player group occupies
// base..base+groupSlots-1 where base is 1, 11, 21, ...
const (
	groupStride = 10
	groupSlots  = 6
)

// Group is the set of control ids that represent one player. A zero id
// means the slot is not present.
type Group struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Main     int    `json:"main"`
	Volume   int    `json:"volume,omitempty"`
	Track    int    `json:"track,omitempty"`
	Actions  int    `json:"actions,omitempty"`
	Shuffle  int    `json:"shuffle,omitempty"`
	Repeat   int    `json:"repeat,omitempty"`
}

func (g *Group) get(role device.Role) int {
	switch role {
	case device.RoleMain:
		return g.Main
	case device.RoleVolume:
		return g.Volume
	case device.RoleTrack:
		return g.Track
	case device.RoleActions:
		return g.Actions
	case device.RoleShuffle:
		return g.Shuffle
	case device.RoleRepeat:
		return g.Repeat
	}
	return 0
}

func (g *Group) set(role device.Role, id int) {
	switch role {
	case device.RoleMain:
		g.Main = id
	case device.RoleVolume:
		g.Volume = id
	case device.RoleTrack:
		g.Track = id
	case device.RoleActions:
		g.Actions = id
	case device.RoleShuffle:
		g.Shuffle = id
	case device.RoleRepeat:
		g.Repeat = id
	}
}

// Registry maps player ids to control groups. Players are identified by the
// PlayerTag of their controls, never by control names.
type Registry struct {
	store    device.Store
	extended bool
	groups   map[string]*Group
}

// NewRegistry creates a Registry. With extended set, new groups also get
// shuffle and repeat selectors.
func NewRegistry(store device.Store, extended bool) *Registry {
	return &Registry{
		store:    store,
		extended: extended,
		groups:   make(map[string]*Group),
	}
}

// Lookup returns the group of playerID if one exists. A player whose main
// control is missing has no group.
func (r *Registry) Lookup(ctx context.Context, playerID string) (*Group, bool, error) {
	if g, ok := r.groups[playerID]; ok {
		return g, true, nil
	}

	controls, err := r.store.FindByTag(ctx, playerID)
	if err != nil {
		return nil, false, fmt.Errorf("find controls of %s: %w", playerID, err)
	}

	g := &Group{PlayerID: playerID}
	for _, c := range controls {
		g.set(c.Role, c.ID)
		if c.Role == device.RoleMain {
			g.Name = c.Name
		}
	}
	if g.Main == 0 {
		return nil, false, nil
	}
	r.groups[playerID] = g
	return g, true, nil
}

// Ensure returns the group of playerID, creating its controls on first
// sighting. Slots missing from an existing group, such as those left by an
// earlier failed creation, are filled in at their offset from the main id.
func (r *Registry) Ensure(ctx context.Context, playerID, name string) (*Group, error) {
	g, ok, err := r.Lookup(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if ok {
		n, err := r.complete(ctx, g, g.Main)
		if n > 0 {
			log.Warn().
				Str("player", playerID).
				Int("created", n).
				Msg("Restored missing controls for player")
		}
		return g, err
	}

	base, err := r.allocate(ctx)
	if err != nil {
		return nil, err
	}

	g = &Group{PlayerID: playerID, Name: name}
	if _, err := r.complete(ctx, g, base); err != nil {
		return nil, err
	}
	r.groups[playerID] = g

	log.Info().
		Str("player", playerID).
		Str("name", name).
		Int("base", base).
		Msg("Created controls for player")
	return g, nil
}

// complete creates every blueprint control g lacks, slot i at base+i, and
// reports how many it created.
func (r *Registry) complete(ctx context.Context, g *Group, base int) (int, error) {
	created := 0
	for i, c := range r.blueprint(g.Name) {
		if g.get(c.Role) != 0 {
			continue
		}
		c.ID = base + i
		c.PlayerTag = g.PlayerID
		if err := r.store.Create(ctx, &c); err != nil {
			return created, fmt.Errorf("create %s control for %s: %w", c.Role, g.PlayerID, err)
		}
		g.set(c.Role, c.ID)
		created++
	}
	return created, nil
}

// Groups returns the groups known to this process ordered by main id.
func (r *Registry) Groups() []Group {
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b Group) int { return cmp.Compare(a.Main, b.Main) })
	return out
}

func (r *Registry) blueprint(name string) []device.Control {
	controls := []device.Control{
		{Name: name, Kind: device.KindSelector, Role: device.RoleMain, LevelNames: mainLevelNames, SValue: "0"},
		{Name: name + " Volume", Kind: device.KindDimmer, Role: device.RoleVolume, SValue: "0"},
		{Name: name + " Track", Kind: device.KindText, Role: device.RoleTrack},
		{Name: name + " Actions", Kind: device.KindSelector, Role: device.RoleActions, LevelNames: actionLevelNames, SValue: "0"},
	}
	if r.extended {
		controls = append(controls,
			device.Control{Name: name + " Shuffle", Kind: device.KindSelector, Role: device.RoleShuffle, LevelNames: shuffleLevelNames, SValue: "0"},
			device.Control{Name: name + " Repeat", Kind: device.KindSelector, Role: device.RoleRepeat, LevelNames: repeatLevelNames, SValue: "0"},
		)
	}
	return controls
}

// allocate returns the first block base whose slots are all unused.
func (r *Registry) allocate(ctx context.Context) (int, error) {
	controls, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list controls: %w", err)
	}
	used := make(map[int]bool, len(controls))
	for _, c := range controls {
		used[c.ID] = true
	}

	for base := 1; ; base += groupStride {
		free := true
		for i := 0; i < groupSlots; i++ {
			if used[base+i] {
				free = false
				break
			}
		}
		if free {
			return base, nil
		}
	}
}
