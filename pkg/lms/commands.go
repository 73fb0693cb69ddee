package lms

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// StatusTags selects the per-track fields returned in playlist_loop.
const StatusTags = "tags:adclmntyK"

// Player is one entry of the server's players_loop.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Model     string `json:"model,omitempty"`
	IP        string `json:"ip,omitempty"`
	Connected bool   `json:"connected"`
	Power     bool   `json:"power"`
}

// Playlist is one saved playlist known to the server.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Display limits for the show command, in character cells. Wide
// characters take two cells on the player screen.
const (
	maxDisplaySubject = 64
	maxDisplayText    = 128
)

// ServerStatus lists the players attached to the server. Entries without a
// player id are dropped.
func ServerStatus(ctx context.Context, c Invoker) ([]Player, error) {
	res, err := c.Invoke(ctx, "", "serverstatus", 0, 999)
	if err != nil {
		return nil, err
	}

	loop := Slice(res, "players_loop")
	players := make([]Player, 0, len(loop))
	for _, entry := range loop {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id := String(m, "playerid")
		if id == "" {
			continue
		}
		name := String(m, "name")
		if name == "" {
			name = "Unknown"
		}
		players = append(players, Player{
			ID:        id,
			Name:      name,
			Model:     String(m, "modelname"),
			IP:        String(m, "ip"),
			Connected: Int(m, "connected", 0) == 1,
			Power:     Int(m, "power", 0) == 1,
		})
	}
	return players, nil
}

// Status fetches the status record of one player including the current
// track of its queue.
func Status(ctx context.Context, c Invoker, playerID string) (map[string]any, error) {
	return c.Invoke(ctx, playerID, "status", "-", 1, StatusTags)
}

// Playlists fetches at most limit saved playlists in server order.
func Playlists(ctx context.Context, c Invoker, limit int) ([]Playlist, error) {
	if limit <= 0 {
		return []Playlist{}, nil
	}
	res, err := c.Invoke(ctx, "", "playlists", 0, limit)
	if err != nil {
		return nil, err
	}

	loop := Slice(res, "playlists_loop")
	out := make([]Playlist, 0, len(loop))
	for _, entry := range loop {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Playlist{
			ID:   String(m, "id"),
			Name: String(m, "playlist"),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Button presses a remote-control button, e.g. "play.single".
func Button(ctx context.Context, c Invoker, playerID, button string) error {
	_, err := c.Invoke(ctx, playerID, "button", button)
	return err
}

// Power switches a player on or off.
func Power(ctx context.Context, c Invoker, playerID string, on bool) error {
	state := "0"
	if on {
		state = "1"
	}
	_, err := c.Invoke(ctx, playerID, "power", state)
	return err
}

// SetVolume sets the mixer volume in percent.
func SetVolume(ctx context.Context, c Invoker, playerID string, percent int) error {
	_, err := c.Invoke(ctx, playerID, "mixer", "volume", fmt.Sprint(percent))
	return err
}

// LoadPlaylist replaces the queue of playerID with a saved playlist and
// starts playback.
func LoadPlaylist(ctx context.Context, c Invoker, playerID, playlistID string) error {
	_, err := c.Invoke(ctx, playerID, "playlistcontrol", "cmd:load", "playlist_id:"+playlistID)
	return err
}

// Show puts a two line message on the player's display.
func Show(ctx context.Context, c Invoker, playerID, subject, text string, seconds int) error {
	s1 := strings.ReplaceAll(runewidth.Truncate(subject, maxDisplaySubject, ""), `"`, "'")
	s2 := strings.ReplaceAll(runewidth.Truncate(text, maxDisplayText, ""), `"`, "'")
	_, err := c.Invoke(ctx, playerID, "show",
		"line1:"+s1,
		"line2:"+s2,
		fmt.Sprintf("duration:%d", seconds),
		"brightness:4",
		"font:huge",
	)
	return err
}

// Sync makes slaveID follow masterID.
func Sync(ctx context.Context, c Invoker, masterID, slaveID string) error {
	_, err := c.Invoke(ctx, masterID, "sync", slaveID)
	return err
}

// Unsync removes playerID from its sync group.
func Unsync(ctx context.Context, c Invoker, playerID string) error {
	_, err := c.Invoke(ctx, playerID, "sync", "-")
	return err
}

// Shuffle sets the playlist shuffle mode (0 off, 1 songs, 2 albums).
func Shuffle(ctx context.Context, c Invoker, playerID string, mode int) error {
	_, err := c.Invoke(ctx, playerID, "playlist", "shuffle", fmt.Sprint(mode))
	return err
}

// Repeat sets the playlist repeat mode (0 off, 1 song, 2 playlist).
func Repeat(ctx context.Context, c Invoker, playerID string, mode int) error {
	_, err := c.Invoke(ctx, playerID, "playlist", "repeat", fmt.Sprint(mode))
	return err
}
