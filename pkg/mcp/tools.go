package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether the last poll reached the media server"),
		),
		s.handleGetHealth,
	)

	// Players
	s.mcpServer.AddTool(
		mcp.NewTool("list_players",
			mcp.WithDescription("List the players found by the last poll with their control ids"),
		),
		s.handleListPlayers,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_playlists",
			mcp.WithDescription("List the saved playlists and the selector level of each"),
		),
		s.handleListPlaylists,
	)

	// Controls
	s.mcpServer.AddTool(
		mcp.NewTool("list_controls",
			mcp.WithDescription("List controls with their current values"),
			mcp.WithString("player",
				mcp.Description("Only return the controls of this player id"),
			),
		),
		s.handleListControls,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_control",
			mcp.WithDescription("Get one control and the JSON schema of the commands it accepts"),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Control id"),
			),
		),
		s.handleGetControl,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("send_command",
			mcp.WithDescription("Send a command to a control. Selector levels are multiples of 10; volume is 0-100."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Control id"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("on, off or set-level"),
			),
			mcp.WithNumber("level",
				mcp.Description("Level for set-level"),
			),
		),
		s.handleSendCommand,
	)

	// Convenience
	s.mcpServer.AddTool(
		mcp.NewTool("play_playlist",
			mcp.WithDescription("Load a saved playlist by name on the first player"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Playlist name (case insensitive)"),
			),
		),
		s.handlePlayPlaylist,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_volume",
			mcp.WithDescription("Set the volume of a player"),
			mcp.WithString("player",
				mcp.Required(),
				mcp.Description("Player id"),
			),
			mcp.WithNumber("level",
				mcp.Required(),
				mcp.Description("Volume 0-100"),
			),
		),
		s.handleSetVolume,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_power",
			mcp.WithDescription("Turn a player on or off"),
			mcp.WithString("player",
				mcp.Required(),
				mcp.Description("Player id"),
			),
			mcp.WithBoolean("on",
				mcp.Required(),
				mcp.Description("true to power on, false to power off"),
			),
		),
		s.handleSetPower,
	)

	// Polling and history
	s.mcpServer.AddTool(
		mcp.NewTool("poll_now",
			mcp.WithDescription("Run a reconciliation cycle immediately"),
		),
		s.handlePollNow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_commands",
			mcp.WithDescription("List recently dispatched commands, newest first"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries (default 20)"),
			),
		),
		s.handleListCommands,
	)
}
