package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/urmzd/lmsync/pkg/db"
)

// Options holds the command line settings shared by the binaries. Flags
// that are set explicitly, on the command line or through the environment,
// override the stored configuration and are written back.
type Options struct {
	DBPath  string
	Profile string

	LMSHost     string
	LMSPort     int
	LMSUser     string
	LMSPassword string

	PollInterval      time.Duration
	MaxPlaylists      int
	Debug             bool
	DisplaySubject    string
	DisplayText       string
	ExtendedControls  bool
	BlankIdleTrack    bool
	RequestsPerSecond float64

	MQTTURL      string
	MQTTUser     string
	MQTTPassword string
	MQTTPrefix   string

	APIHost string
	APIPort int

	flags *pflag.FlagSet
}

// envFlags maps environment variables to the flags they set.
var envFlags = map[string]string{
	"LMSYNC_DB":         "db",
	"LMSYNC_PROFILE":    "profile",
	"LMSYNC_DEBUG":      "debug",
	"LMS_HOST":          "lms-host",
	"LMS_PORT":          "lms-port",
	"LMS_USERNAME":      "lms-user",
	"LMS_PASSWORD":      "lms-password",
	"LMS_POLL_INTERVAL": "poll-interval",
	"LMS_DISPLAY_TEXT":  "display-text",
	"MQTT_URL":          "mqtt-url",
	"MQTT_USERNAME":     "mqtt-user",
	"MQTT_PASSWORD":     "mqtt-password",
	"MQTT_TOPIC_PREFIX": "mqtt-prefix",
}

// AddFlags registers the options on fs.
func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	d := db.DefaultLMSServer()

	flagSet.StringVar(&o.DBPath, "db", "", "path to database file (default: ~/.config/lmsync/lmsync.db)")
	flagSet.StringVar(&o.Profile, "profile", "default", "configuration profile")

	flagSet.StringVar(&o.LMSHost, "lms-host", d.Host, "media server host")
	flagSet.IntVar(&o.LMSPort, "lms-port", d.Port, "media server JSON-RPC port")
	flagSet.StringVar(&o.LMSUser, "lms-user", "", "media server username")
	flagSet.StringVar(&o.LMSPassword, "lms-password", "", "media server password")

	flagSet.DurationVar(&o.PollInterval, "poll-interval", d.PollInterval, "time between polls")
	flagSet.IntVar(&o.MaxPlaylists, "max-playlists", d.MaxPlaylists, "playlists offered by the playlist selector")
	flagSet.BoolVar(&o.Debug, "debug", d.Debug, "log raw player status and every control write")
	flagSet.StringVar(&o.DisplaySubject, "display-subject", d.DisplaySubject, "first line of the SendText message")
	flagSet.StringVar(&o.DisplayText, "display-text", d.DisplayText, "second line of the SendText message")
	flagSet.BoolVar(&o.ExtendedControls, "extended-controls", d.ExtendedControls, "create shuffle and repeat selectors")
	flagSet.BoolVar(&o.BlankIdleTrack, "blank-idle-track", d.BlankIdleTrack, "blank the track text unless playing")
	flagSet.Float64Var(&o.RequestsPerSecond, "rate-limit", 20, "maximum media server requests per second (0 disables)")

	flagSet.StringVar(&o.MQTTURL, "mqtt-url", "", "MQTT broker URL, e.g. tcp://localhost:1883 (empty disables)")
	flagSet.StringVar(&o.MQTTUser, "mqtt-user", "", "MQTT username")
	flagSet.StringVar(&o.MQTTPassword, "mqtt-password", "", "MQTT password")
	flagSet.StringVar(&o.MQTTPrefix, "mqtt-prefix", "lmsync", "MQTT topic prefix")

	flagSet.StringVar(&o.APIHost, "api-host", "0.0.0.0", "REST API listen host")
	flagSet.IntVar(&o.APIPort, "api-port", 8080, "REST API listen port")

	o.flags = flagSet
}

// LoadEnv loads .env from the working directory when present and applies
// every known environment variable to a flag that was not given on the
// command line. Call it after parsing.
func (o *Options) LoadEnv() error {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	for env, name := range envFlags {
		value, ok := os.LookupEnv(env)
		if !ok || o.flags.Changed(name) || o.flags.Lookup(name) == nil {
			continue
		}
		if err := o.flags.Set(name, value); err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
	}
	return nil
}

// changed reports whether the named flag was set explicitly.
func (o *Options) changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}

// media returns the media server settings the options describe.
func (o *Options) media() db.LMSServer {
	return db.LMSServer{
		Host:             o.LMSHost,
		Port:             o.LMSPort,
		Username:         o.LMSUser,
		Password:         o.LMSPassword,
		PollInterval:     o.PollInterval,
		MaxPlaylists:     o.MaxPlaylists,
		Debug:            o.Debug,
		DisplaySubject:   o.DisplaySubject,
		DisplayText:      o.DisplayText,
		ExtendedControls: o.ExtendedControls,
		BlankIdleTrack:   o.BlankIdleTrack,
	}
}
