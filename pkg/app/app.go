// Package app wires the database, the media server client, the engine and
// its publishers into one runnable unit shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/db"
	"github.com/urmzd/lmsync/pkg/device/schema"
	"github.com/urmzd/lmsync/pkg/engine"
	"github.com/urmzd/lmsync/pkg/lms"
	"github.com/urmzd/lmsync/pkg/notify"
)

const hubBuffer = 64

// App is a configured engine with everything it depends on.
type App struct {
	DB        *db.DB
	Config    *db.Config
	Engine    *engine.Engine
	Poller    *engine.Poller
	Hub       *notify.Hub
	MQTT      *notify.MQTT // nil when no broker is configured
	Validator *schema.Validator
}

// Open opens the database, loads the active configuration with the
// explicit options applied and builds the engine. Nothing talks to the
// media server or the broker until Start.
func Open(ctx context.Context, opts *Options) (*App, error) {
	database, err := db.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	a := &App{DB: database}
	if err := a.load(ctx, opts); err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) load(ctx context.Context, opts *Options) error {
	if err := a.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if _, err := a.DB.Bootstrap(ctx, opts.Profile, opts.media()); err != nil {
		return fmt.Errorf("failed to bootstrap database: %w", err)
	}

	cfg, err := a.DB.ActiveConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyOverrides(ctx, a.DB, cfg, opts); err != nil {
		return err
	}
	a.Config = cfg

	media := cfg.Media()
	zerolog.SetGlobalLevel(logLevel(media.Debug))

	log.Info().
		Str("profile", cfg.Profile.Name).
		Str("media_server", fmt.Sprintf("%s:%d", media.Host, media.Port)).
		Dur("poll_interval", media.PollInterval).
		Str("api_address", cfg.APIAddress()).
		Msg("Configuration loaded")

	client := lms.NewClient(lms.Options{
		Host:              media.Host,
		Port:              media.Port,
		Username:          media.Username,
		Password:          media.Password,
		RequestsPerSecond: opts.RequestsPerSecond,
	})

	a.Hub = notify.NewHub(hubBuffer)
	publishers := notify.Fanout{a.Hub}
	if b := cfg.MQTTBroker; b != nil && b.URL != "" {
		a.MQTT = notify.NewMQTT(notify.MQTTOptions{
			URL:         b.URL,
			Username:    b.Username,
			Password:    b.Password,
			TopicPrefix: b.TopicPrefix,
		}, a.DB.Controls(), nil)
		publishers = append(publishers, a.MQTT)
	}

	ecfg := engine.DefaultConfig()
	ecfg.MaxPlaylists = media.MaxPlaylists
	ecfg.Debug = media.Debug
	ecfg.DisplaySubject = media.DisplaySubject
	ecfg.DisplayText = media.DisplayText
	ecfg.ExtendedControls = media.ExtendedControls
	ecfg.BlankIdleTrack = media.BlankIdleTrack

	a.Engine = engine.New(client, a.DB.Controls(), ecfg,
		engine.WithPublisher(publishers),
		engine.WithHistory(a.DB.Commands()),
	)
	a.Poller = engine.NewPoller(a.Engine, media.PollInterval, 0)
	a.Engine.SetScheduler(a.Poller)
	if a.MQTT != nil {
		a.MQTT.SetDispatcher(a.Engine)
	}

	a.Validator = schema.NewValidator()
	return nil
}

// logLevel is the global log level for the debug setting.
func logLevel(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Start connects the broker, if any, and runs the poller until ctx is
// cancelled. A broker that cannot be reached is logged and retried by the
// client in the background.
func (a *App) Start(ctx context.Context) error {
	if a.MQTT != nil {
		if err := a.MQTT.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("MQTT broker unavailable, continuing without it")
		}
	}

	err := a.Poller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close disconnects the broker and closes the database.
func (a *App) Close() error {
	if a.MQTT != nil {
		a.MQTT.Close()
	}
	return a.DB.Close()
}

// applyOverrides writes explicitly set options into the stored
// configuration of cfg.Profile and updates cfg to match.
func applyOverrides(ctx context.Context, database *db.DB, cfg *db.Config, opts *Options) error {
	media := cfg.Media()
	media.ProfileID = cfg.Profile.ID
	mediaChanged := false
	override := func(name string, apply func()) {
		if opts.changed(name) {
			apply()
			mediaChanged = true
		}
	}
	override("lms-host", func() { media.Host = opts.LMSHost })
	override("lms-port", func() { media.Port = opts.LMSPort })
	override("lms-user", func() { media.Username = opts.LMSUser })
	override("lms-password", func() { media.Password = opts.LMSPassword })
	override("poll-interval", func() { media.PollInterval = opts.PollInterval })
	override("max-playlists", func() { media.MaxPlaylists = opts.MaxPlaylists })
	override("debug", func() { media.Debug = opts.Debug })
	override("display-subject", func() { media.DisplaySubject = opts.DisplaySubject })
	override("display-text", func() { media.DisplayText = opts.DisplayText })
	override("extended-controls", func() { media.ExtendedControls = opts.ExtendedControls })
	override("blank-idle-track", func() { media.BlankIdleTrack = opts.BlankIdleTrack })
	if mediaChanged {
		if err := database.LMSServers().Save(ctx, &media); err != nil {
			return err
		}
		log.Info().Msg("Media server settings updated from flags")
	}
	cfg.LMSServer = &media

	if opts.changed("api-host") || opts.changed("api-port") {
		api := db.APIServer{ProfileID: cfg.Profile.ID, Host: "0.0.0.0", Port: 8080}
		if cfg.APIServer != nil {
			api = *cfg.APIServer
		}
		if opts.changed("api-host") {
			api.Host = opts.APIHost
		}
		if opts.changed("api-port") {
			api.Port = opts.APIPort
		}
		if err := database.APIServers().Save(ctx, &api); err != nil {
			return err
		}
		cfg.APIServer = &api
	}

	if !opts.changed("mqtt-url") && !opts.changed("mqtt-user") &&
		!opts.changed("mqtt-password") && !opts.changed("mqtt-prefix") {
		return nil
	}
	broker := db.MQTTBroker{ProfileID: cfg.Profile.ID, TopicPrefix: opts.MQTTPrefix}
	if cfg.MQTTBroker != nil {
		broker = *cfg.MQTTBroker
	}
	if opts.changed("mqtt-url") {
		broker.URL = opts.MQTTURL
	}
	if opts.changed("mqtt-user") {
		broker.Username = opts.MQTTUser
	}
	if opts.changed("mqtt-password") {
		broker.Password = opts.MQTTPassword
	}
	if opts.changed("mqtt-prefix") {
		broker.TopicPrefix = opts.MQTTPrefix
	}

	if broker.URL == "" {
		if cfg.MQTTBroker != nil {
			if err := database.MQTTBrokers().Delete(ctx, cfg.Profile.ID); err != nil && !errors.Is(err, db.ErrMQTTBrokerNotFound) {
				return err
			}
			log.Info().Msg("MQTT publishing disabled")
		}
		cfg.MQTTBroker = nil
		return nil
	}
	if err := database.MQTTBrokers().Save(ctx, &broker); err != nil {
		return err
	}
	cfg.MQTTBroker = &broker
	return nil
}
