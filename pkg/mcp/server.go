package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/device/schema"
	"github.com/urmzd/lmsync/pkg/engine"
)

// Engine is the part of engine.Engine the tools use.
type Engine interface {
	Snapshot() engine.Snapshot
	Store() device.Store
	Reconcile(ctx context.Context) error
	Dispatch(ctx context.Context, cmd engine.Command) (device.CommandRecord, error)
	RecentCommands(ctx context.Context, limit int) ([]device.CommandRecord, error)
}

// Server wraps the MCP server with lmsync's player control functionality
type Server struct {
	mcpServer *server.MCPServer
	engine    Engine
	validator *schema.Validator
}

// NewServer creates a new MCP server for player control
func NewServer(engine Engine, validator *schema.Validator) *Server {
	s := &Server{
		engine:    engine,
		validator: validator,
	}

	s.mcpServer = server.NewMCPServer(
		"lmsync",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
