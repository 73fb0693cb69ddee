package engine

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/lms"
)

// PlaylistsControlID is the server-level playlist selector.
const PlaylistsControlID = 250

const (
	selectLabel      = "Select"
	noPlaylistsLabel = "No playlists"
)

// PlaylistEntry is a cataloged playlist. Index is its 1-based position in
// the last refresh.
type PlaylistEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Index int    `json:"index"`
	Level int    `json:"level"`
}

// Catalog holds the playlists fetched by the last refresh. Positions are
// reassigned from scratch on every refresh.
type Catalog struct {
	max     int
	entries []PlaylistEntry
}

// NewCatalog creates a Catalog holding at most max playlists.
func NewCatalog(max int) *Catalog {
	return &Catalog{max: max}
}

// Refresh rebuilds the catalog from the server. On failure the catalog is
// left empty.
func (c *Catalog) Refresh(ctx context.Context, inv lms.Invoker) error {
	c.entries = nil
	playlists, err := lms.Playlists(ctx, inv, c.max)
	if err != nil {
		return err
	}
	c.Load(playlists)
	return nil
}

// Load replaces the catalog contents.
func (c *Catalog) Load(playlists []lms.Playlist) {
	c.entries = make([]PlaylistEntry, 0, len(playlists))
	for i, p := range playlists {
		if c.max > 0 && i >= c.max {
			break
		}
		c.entries = append(c.entries, PlaylistEntry{
			ID:    p.ID,
			Name:  p.Name,
			Index: i + 1,
			Level: EncodeLevel(i + 1),
		})
	}
}

// Entries returns a copy of the catalog.
func (c *Catalog) Entries() []PlaylistEntry {
	return slices.Clone(c.entries)
}

// IndexOf returns the 1-based position of name.
func (c *Catalog) IndexOf(name string) (int, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e.Index, true
		}
	}
	return 0, false
}

// LevelOf returns the selector level of name.
func (c *Catalog) LevelOf(name string) (int, bool) {
	idx, ok := c.IndexOf(name)
	if !ok {
		return 0, false
	}
	return EncodeLevel(idx), true
}

// EntryAtLevel returns the playlist selected by level. Levels below
// LevelStep are the "no selection" sentinel and never match.
func (c *Catalog) EntryAtLevel(level int) (PlaylistEntry, bool) {
	if level < LevelStep {
		return PlaylistEntry{}, false
	}
	idx := DecodeLevel(level)
	if idx > len(c.entries) {
		return PlaylistEntry{}, false
	}
	return c.entries[idx-1], true
}

// NameAtLevel is the inverse of LevelOf.
func (c *Catalog) NameAtLevel(level int) (string, bool) {
	e, ok := c.EntryAtLevel(level)
	return e.Name, ok
}

// LevelNames returns the labels of the playlist selector.
func (c *Catalog) LevelNames() []string {
	if len(c.entries) == 0 {
		return []string{noPlaylistsLabel}
	}
	names := make([]string, 0, len(c.entries)+1)
	names = append(names, selectLabel)
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	return names
}

// ActivePlaylist reports the playlist name a status record is playing
// from. Radio streams and single-track queues are not playlists.
func ActivePlaylist(status map[string]any) (string, bool) {
	name := lms.String(status, "playlist_name")
	if lms.Int(status, "playlist_tracks", 0) > 1 && name != "" && lms.Int(status, "remote", 0) != 1 {
		return name, true
	}
	return "", false
}

// syncSelector creates the playlist selector or rewrites its labels when
// they differ from the catalog. A label rewrite resets the selection.
func (e *Engine) syncSelector(ctx context.Context) error {
	names := e.catalog.LevelNames()

	current, err := e.store.Get(ctx, PlaylistsControlID)
	if errors.Is(err, device.ErrNotFound) {
		ctrl := &device.Control{
			ID:         PlaylistsControlID,
			Name:       "LMS Playlists",
			Kind:       device.KindSelector,
			Role:       device.RolePlaylists,
			LevelNames: names,
			SValue:     "0",
		}
		if err := e.store.Create(ctx, ctrl); err != nil {
			return err
		}
		log.Info().Int("control", PlaylistsControlID).Msg("Created playlist selector")
		return nil
	}
	if err != nil {
		return err
	}

	if slices.Equal(current.LevelNames, names) {
		return nil
	}
	log.Info().Strs("playlists", names).Msg("Playlists updated")
	return e.write(ctx, current, 0, "0", device.UpdateOptions{LevelNames: names})
}

// applyPlaylist points the selector at the playlist the status record is
// playing from.
func (e *Engine) applyPlaylist(ctx context.Context, status map[string]any) error {
	current, err := e.store.Get(ctx, PlaylistsControlID)
	if err != nil {
		return err
	}

	name, active := ActivePlaylist(status)
	if !active {
		return e.write(ctx, current, 0, "0", device.UpdateOptions{})
	}
	level, ok := e.catalog.LevelOf(name)
	if !ok {
		log.Info().Str("playlist", name).Msg("Active playlist is not in the catalog")
		return nil
	}
	return e.write(ctx, current, 1, strconv.Itoa(level), device.UpdateOptions{})
}
