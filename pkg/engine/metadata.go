package engine

import (
	"strings"

	"github.com/urmzd/lmsync/pkg/lms"
)

// Track labels.
const (
	UnknownTrack = "(unknown track)"
	OffLabel     = "Off"
	StoppedLabel = "Stopped"

	maxLabelLength = 255
)

// Track is the display state derived from one status record.
type Track struct {
	Title   string `json:"title"`
	Artist  string `json:"artist,omitempty"`
	Album   string `json:"album,omitempty"`
	Label   string `json:"label"`
	Changed bool   `json:"changed"`
}

// TrackIndexMemo remembers the last queue position seen per player.
// It is not safe for concurrent use.
type TrackIndexMemo struct {
	last map[string]int
}

// NewTrackIndexMemo creates an empty memo.
func NewTrackIndexMemo() *TrackIndexMemo {
	return &TrackIndexMemo{last: make(map[string]int)}
}

// Observe records the playlist_cur_index of status and reports whether it
// differs from the previous one for playerID. A player seen for the first
// time counts as changed. Without an index nothing is recorded.
func (m *TrackIndexMemo) Observe(playerID string, status map[string]any) bool {
	v, ok := status["playlist_cur_index"]
	if !ok || v == nil {
		return false
	}
	idx, err := lms.ParseInt(v)
	if err != nil {
		return false
	}
	prev, seen := m.last[playerID]
	m.last[playerID] = idx
	return !seen || prev != idx
}

// Resolver derives track metadata and labels from status records.
type Resolver struct {
	memo *TrackIndexMemo
}

// NewResolver creates a Resolver with its own memo.
func NewResolver() *Resolver {
	return &Resolver{memo: NewTrackIndexMemo()}
}

// Resolve derives the display state of playerID from status.
func (r *Resolver) Resolve(playerID string, status map[string]any) Track {
	t := ResolveMetadata(status)
	power := lms.Int(status, "power", 0) == 1
	t.Label = ComposeLabel(power, lms.String(status, "mode"), t)
	t.Changed = r.memo.Observe(playerID, status)
	return t
}

// ResolveMetadata picks title, artist and album from the first source that
// has a title: remote stream metadata (remote streams only), the first
// queue entry, then current_title for the title alone.
func ResolveMetadata(status map[string]any) Track {
	var t Track
	for _, src := range metadataSources(status) {
		if title := strings.TrimSpace(lms.String(src, "title")); title != "" {
			t = Track{
				Title:  title,
				Artist: strings.TrimSpace(lms.String(src, "artist")),
				Album:  strings.TrimSpace(lms.String(src, "album")),
			}
			break
		}
	}

	station := strings.TrimSpace(lms.String(status, "current_title"))
	if t.Title == "" {
		t.Title = station
	}

	// Stations often prefix the song with their own name.
	if station != "" && len(t.Title) > len(station) && strings.HasPrefix(t.Title, station) {
		t.Title = strings.Trim(t.Title[len(station):], " -")
	}

	t.Title = cleanGlyphs(t.Title)
	t.Artist = cleanGlyphs(t.Artist)
	t.Album = cleanGlyphs(t.Album)

	if t.Artist == "" {
		if artist, title, ok := strings.Cut(t.Title, "-"); ok {
			artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
			if artist != "" && title != "" {
				t.Artist, t.Title = artist, title
			}
		}
	}

	if t.Title == "" {
		t.Title = UnknownTrack
	}
	return t
}

func metadataSources(status map[string]any) []map[string]any {
	var sources []map[string]any
	if lms.Int(status, "remote", 0) == 1 {
		for _, key := range []string{"remoteMeta", "remote_meta"} {
			if m := lms.Map(status, key); m != nil {
				sources = append(sources, m)
			}
		}
	}
	if loop := lms.Slice(status, "playlist_loop"); len(loop) > 0 {
		if m, ok := loop[0].(map[string]any); ok {
			sources = append(sources, m)
		}
	}
	return sources
}

// cleanGlyphs drops the placeholders the server emits for characters it
// could not decode.
func cleanGlyphs(s string) string {
	s = strings.ReplaceAll(s, "??", "")
	s = strings.ReplaceAll(s, "\uFFFD", "")
	return strings.TrimSpace(s)
}

// ComposeLabel builds the text shown for a player.
func ComposeLabel(power bool, mode string, t Track) string {
	var label string
	switch {
	case !power:
		label = OffLabel
	case mode == ModePlay && t.Artist != "":
		label = t.Artist + " / " + t.Title
		if t.Album != "" {
			label += " (" + t.Album + ")"
		}
	case mode == ModePlay, mode == ModePause:
		label = t.Title
	default:
		label = StoppedLabel
	}
	if r := []rune(label); len(r) > maxLabelLength {
		label = string(r[:maxLabelLength])
	}
	return label
}
