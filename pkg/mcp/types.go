package mcp

import (
	"encoding/json"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
	"github.com/urmzd/lmsync/pkg/lms"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status      string `json:"status" jsonschema:"description=Overall health status (healthy or degraded)"`
	MediaServer string `json:"media_server" jsonschema:"description=reachable, unreachable or pending"`
	Players     int    `json:"players" jsonschema:"description=Players seen by the last poll"`
	LastPoll    string `json:"last_poll,omitempty" jsonschema:"description=ISO8601 time of the last poll"`
	LastError   string `json:"last_error,omitempty" jsonschema:"description=Error of the last poll"`
	Timestamp   string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Players Tools ---

// PlayerInfo is a player and the ids of its controls
type PlayerInfo struct {
	lms.Player
	Controls *engine.Group `json:"controls,omitempty" jsonschema:"description=Control ids of the player's group"`
}

// ListPlayersOutput is the output for the list_players tool
type ListPlayersOutput struct {
	Players []PlayerInfo `json:"players" jsonschema:"description=Players seen by the last poll"`
	Count   int          `json:"count" jsonschema:"description=Total number of players"`
}

// ListPlaylistsOutput is the output for the list_playlists tool
type ListPlaylistsOutput struct {
	Playlists []engine.PlaylistEntry `json:"playlists" jsonschema:"description=Saved playlists in selector order"`
	Count     int                    `json:"count" jsonschema:"description=Total number of playlists"`
}

// --- Control Tools ---

// ControlInfo represents a control in tool outputs
type ControlInfo struct {
	device.Control
	CommandSchema json.RawMessage `json:"command_schema,omitempty" jsonschema:"description=JSON Schema for send_command"`
}

// ListControlsOutput is the output for the list_controls tool
type ListControlsOutput struct {
	Controls []ControlInfo `json:"controls" jsonschema:"description=Controls ordered by id"`
	Count    int           `json:"count" jsonschema:"description=Total number of controls"`
}

// GetControlOutput is the output for the get_control tool
type GetControlOutput struct {
	Control ControlInfo `json:"control" jsonschema:"description=Control information"`
}

// CommandOutput is the output of every tool that dispatches a command
type CommandOutput struct {
	Command device.CommandRecord `json:"command" jsonschema:"description=History record of the command"`
	Control device.Control       `json:"control" jsonschema:"description=Control state after the command"`
}

// --- Poll and History Tools ---

// PollOutput is the output for the poll_now tool
type PollOutput struct {
	Players   int    `json:"players" jsonschema:"description=Players seen by the poll"`
	Playlists int    `json:"playlists" jsonschema:"description=Playlists in the catalog"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 time of the poll"`
}

// ListCommandsOutput is the output for the list_commands tool
type ListCommandsOutput struct {
	Commands []device.CommandRecord `json:"commands" jsonschema:"description=Dispatched commands, newest first"`
	Count    int                    `json:"count" jsonschema:"description=Number of entries"`
}

// ControlToInfo attaches the command schema of c.
func ControlToInfo(c device.Control) ControlInfo {
	return ControlInfo{Control: c, CommandSchema: c.CommandSchema()}
}
