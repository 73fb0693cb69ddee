package types

import (
	"encoding/json"
	"time"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
	"github.com/urmzd/lmsync/pkg/lms"
)

// --- Request DTOs ---

// CommandRequest is the request body for POST /controls/:id/command
type CommandRequest struct {
	Command string `json:"command" example:"set-level"`
	Level   int    `json:"level" example:"20"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status      string    `json:"status"`
	MediaServer string    `json:"media_server"`
	Players     int       `json:"players"`
	LastPoll    time.Time `json:"last_poll,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// PlayerWithControls is a player seen by the last poll and its controls
type PlayerWithControls struct {
	lms.Player
	Controls *engine.Group `json:"controls,omitempty"`
}

// ListPlayersResponse is returned from GET /players
type ListPlayersResponse struct {
	Players  []PlayerWithControls `json:"players"`
	Count    int                  `json:"count"`
	LastPoll time.Time            `json:"last_poll"`
}

// ListPlaylistsResponse is returned from GET /playlists
type ListPlaylistsResponse struct {
	Playlists []engine.PlaylistEntry `json:"playlists"`
	Count     int                    `json:"count"`
}

// ControlWithSchema is a control and the commands it accepts
type ControlWithSchema struct {
	device.Control
	CommandSchema json.RawMessage `json:"command_schema,omitempty"`
}

// ListControlsResponse is returned from GET /controls
type ListControlsResponse struct {
	Controls []ControlWithSchema `json:"controls"`
	Count    int                 `json:"count"`
}

// ControlResponse is returned from GET /controls/:id
type ControlResponse struct {
	Control ControlWithSchema `json:"control"`
}

// CommandResponse is returned from POST /controls/:id/command
type CommandResponse struct {
	Command device.CommandRecord `json:"command"`
	Control device.Control       `json:"control"`
}

// PollResponse is returned from POST /poll
type PollResponse struct {
	Status    string    `json:"status"`
	Players   int       `json:"players"`
	Timestamp time.Time `json:"timestamp"`
}

// ListCommandsResponse is returned from GET /commands
type ListCommandsResponse struct {
	Commands []device.CommandRecord `json:"commands"`
	Count    int                    `json:"count"`
}

// NewControlWithSchema attaches the command schema of c.
func NewControlWithSchema(c device.Control) ControlWithSchema {
	return ControlWithSchema{Control: c, CommandSchema: c.CommandSchema()}
}
