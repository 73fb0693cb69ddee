package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/urmzd/lmsync/pkg/app"
	lmsyncmcp "github.com/urmzd/lmsync/pkg/mcp"
)

func main() {
	// Logging must go to stderr, stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	var opts app.Options
	flagSet := pflag.NewFlagSet("lmsync-mcp", pflag.ExitOnError)
	opts.AddFlags(flagSet)
	_ = flagSet.Parse(os.Args[1:])
	if err := opts.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("Invalid environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lmsync, err := app.Open(ctx, &opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer func() {
		if err := lmsync.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	go func() {
		if err := lmsync.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Poller failed")
		}
	}()

	mcpServer := lmsyncmcp.NewServer(lmsync.Engine, lmsync.Validator)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
