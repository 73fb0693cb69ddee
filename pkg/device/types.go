package device

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Kind is the capability set of a control.
type Kind string

// Control kinds
const (
	KindSelector Kind = "selector" // enumerated levels in steps of ten
	KindDimmer   Kind = "dimmer"   // 0-100
	KindText     Kind = "text"     // free text display
)

// Role identifies which slot of a player's control group a control fills.
type Role string

// Control roles
const (
	RoleMain      Role = "main"
	RoleVolume    Role = "volume"
	RoleTrack     Role = "track"
	RoleActions   Role = "actions"
	RoleShuffle   Role = "shuffle"
	RoleRepeat    Role = "repeat"
	RolePlaylists Role = "playlists"
)

// Control is a locally persisted representation of one UI control.
type Control struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	Role       Role      `json:"role"`
	PlayerTag  string    `json:"player_tag,omitempty"` // remote player id, empty for server-level controls
	LevelNames []string  `json:"level_names,omitempty"`
	NValue     int       `json:"nvalue"`
	SValue     string    `json:"svalue"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateOptions modifies a state update.
type UpdateOptions struct {
	// LevelNames replaces the selector labels when non-nil.
	LevelNames []string

	// Force writes even when nothing differs.
	Force bool
}

// Changed reports whether applying nValue, sValue and opts to c would alter
// the stored record.
func (c *Control) Changed(nValue int, sValue string, opts UpdateOptions) bool {
	if c.NValue != nValue || c.SValue != sValue {
		return true
	}
	return opts.LevelNames != nil && !slices.Equal(c.LevelNames, opts.LevelNames)
}

// CommandSchema returns the JSON Schema accepted by the command endpoint for
// this control.
func (c *Control) CommandSchema() json.RawMessage {
	var schema map[string]any
	switch c.Kind {
	case KindDimmer:
		schema = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "enum": []string{"on", "off", "set-level"}},
				"level":   map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			},
			"required":             []string{"command"},
			"additionalProperties": false,
		}
	case KindSelector:
		maxLevel := 0
		if n := len(c.LevelNames); n > 1 {
			maxLevel = (n - 1) * 10
		}
		schema = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "enum": []string{"on", "off", "set-level"}},
				"level":   map[string]any{"type": "integer", "minimum": 0, "maximum": maxLevel, "multipleOf": 10},
			},
			"required":             []string{"command"},
			"additionalProperties": false,
		}
	default:
		// Text controls are display only.
		schema = map[string]any{"not": map[string]any{}}
	}

	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("device: marshal command schema: %v", err))
	}
	return b
}

// StateEvent is published after every write to a control.
type StateEvent struct {
	Control   Control   `json:"control"`
	Forced    bool      `json:"forced"`
	Timestamp time.Time `json:"timestamp"`
}
