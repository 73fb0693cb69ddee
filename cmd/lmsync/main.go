package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/urmzd/lmsync/pkg/api"
	"github.com/urmzd/lmsync/pkg/app"

	_ "github.com/urmzd/lmsync/docs"
)

// @title           lmsync API
// @version         1.0
// @description     REST API mirroring Logitech Media Server players into local controls

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	var opts app.Options
	flagSet := pflag.NewFlagSet("lmsync", pflag.ExitOnError)
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

	// Poll the media server in the background
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		if err := lmsync.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Poller failed")
		}
	}()

	router := api.NewRouter(lmsync.Engine, lmsync.Hub, lmsync.Validator)
	srv := &http.Server{
		Addr:              lmsync.Config.APIAddress(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown gracefully
	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down API server")
		}
	}()

	log.Info().Str("address", srv.Addr).Msg("Starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
		stop()
	}
	<-pollerDone
}
