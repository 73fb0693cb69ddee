package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
)

const defaultCommandLimit = 20

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.engine.Snapshot()

	mediaServer := "reachable"
	switch {
	case snap.LastPoll.IsZero():
		mediaServer = "pending"
	case snap.LastError != "":
		mediaServer = "unreachable"
	}

	status := "healthy"
	if mediaServer != "reachable" {
		status = "degraded"
	}

	out := GetHealthOutput{
		Status:      status,
		MediaServer: mediaServer,
		Players:     len(snap.Players),
		LastError:   snap.LastError,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if !snap.LastPoll.IsZero() {
		out.LastPoll = snap.LastPoll.UTC().Format(time.RFC3339)
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.engine.Snapshot()

	groups := make(map[string]engine.Group, len(snap.Groups))
	for _, g := range snap.Groups {
		groups[g.PlayerID] = g
	}

	players := make([]PlayerInfo, 0, len(snap.Players))
	for _, p := range snap.Players {
		info := PlayerInfo{Player: p}
		if g, ok := groups[p.ID]; ok {
			info.Controls = &g
		}
		players = append(players, info)
	}

	out := ListPlayersOutput{
		Players: players,
		Count:   len(players),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListPlaylists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playlists := s.engine.Snapshot().Playlists
	if playlists == nil {
		playlists = []engine.PlaylistEntry{}
	}
	out := ListPlaylistsOutput{
		Playlists: playlists,
		Count:     len(playlists),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListControls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		controls []device.Control
		err      error
	)
	if player, ok := request.GetArguments()["player"].(string); ok && player != "" {
		controls, err = s.engine.Store().FindByTag(ctx, player)
	} else {
		controls, err = s.engine.Store().List(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list controls: %s", err)), nil
	}

	infos := make([]ControlInfo, 0, len(controls))
	for _, c := range controls {
		infos = append(infos, ControlToInfo(c))
	}

	out := ListControlsOutput{
		Controls: infos,
		Count:    len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.engine.Store().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("control not found: %s", err)), nil
	}

	out := GetControlOutput{Control: ControlToInfo(*c)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSendCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb, err := requiredString(request, "command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	level := 0
	if l, ok := request.GetArguments()["level"].(float64); ok {
		level = int(l)
	}

	c, err := s.engine.Store().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("control not found: %s", err)), nil
	}
	return s.send(ctx, c, verb, level), nil
}

func (s *Server) handlePlayPlaylist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var entry *engine.PlaylistEntry
	for _, p := range s.engine.Snapshot().Playlists {
		if strings.EqualFold(p.Name, name) {
			entry = &p
			break
		}
	}
	if entry == nil {
		return mcp.NewToolResultError(fmt.Sprintf("playlist %q not found", name)), nil
	}

	c, err := s.engine.Store().Get(ctx, engine.PlaylistsControlID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("playlist selector unavailable: %s", err)), nil
	}
	return s.send(ctx, c, engine.VerbSetLevel, entry.Level), nil
}

func (s *Server) handleSetVolume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requiredString(request, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	level, err := requiredInt(request, "level")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.playerControl(ctx, player, device.RoleVolume)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.send(ctx, c, engine.VerbSetLevel, level), nil
}

func (s *Server) handleSetPower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requiredString(request, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	on, ok := request.GetArguments()["on"].(bool)
	if !ok {
		return mcp.NewToolResultError(`required parameter "on" must be a boolean`), nil
	}

	c, err := s.playerControl(ctx, player, device.RoleMain)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := engine.VerbOff
	if on {
		verb = engine.VerbOn
	}
	return s.send(ctx, c, verb, 0), nil
}

func (s *Server) handlePollNow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Reconcile(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("poll failed: %s", err)), nil
	}

	snap := s.engine.Snapshot()
	out := PollOutput{
		Players:   len(snap.Players),
		Playlists: len(snap.Playlists),
		Timestamp: snap.LastPoll.UTC().Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := defaultCommandLimit
	if l, ok := request.GetArguments()["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	records, err := s.engine.RecentCommands(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list commands: %s", err)), nil
	}
	if records == nil {
		records = []device.CommandRecord{}
	}

	out := ListCommandsOutput{
		Commands: records,
		Count:    len(records),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// send validates a command against the control's schema and dispatches it.
func (s *Server) send(ctx context.Context, c *device.Control, verb string, level int) *mcp.CallToolResult {
	verb = engine.NormalizeVerb(verb)

	if s.validator != nil {
		payload := map[string]any{"command": verb}
		if verb == engine.VerbSetLevel {
			payload["level"] = level
		}
		if err := s.validator.ValidateCommand(c, payload); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err))
		}
	}

	rec, err := s.engine.Dispatch(ctx, engine.Command{
		ControlID: c.ID,
		Verb:      verb,
		Level:     level,
		Source:    "mcp",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("command failed: %s", err))
	}

	updated, err := s.engine.Store().Get(ctx, c.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read control: %s", err))
	}

	return mcp.NewToolResultText(formatJSON(CommandOutput{
		Command: rec,
		Control: *updated,
	}))
}

// playerControl finds the control with the given role in a player's group.
func (s *Server) playerControl(ctx context.Context, player string, role device.Role) (*device.Control, error) {
	controls, err := s.engine.Store().FindByTag(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}
	for i := range controls {
		if controls[i].Role == role {
			return &controls[i], nil
		}
	}
	return nil, fmt.Errorf("player %q has no %s control", player, role)
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("parameter %q must be an integer", key)
	}
	return int(f), nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
