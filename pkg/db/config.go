package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config represents the complete runtime configuration loaded from the database.
type Config struct {
	Profile    *Profile
	APIServer  *APIServer
	LMSServer  *LMSServer
	MQTTBroker *MQTTBroker // nil when publishing is disabled
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:8080"
	}
	return c.APIServer.Address()
}

// Media returns the media server settings, falling back to defaults.
func (c *Config) Media() LMSServer {
	if c.LMSServer == nil {
		return DefaultLMSServer()
	}
	return *c.LMSServer
}

// ActiveConfig loads the complete configuration for the active profile and
// scopes the profile-bound stores to it.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}
	db.UseProfile(profile.ID)

	config := &Config{
		Profile: profile,
	}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	lmsServer, err := db.LMSServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrLMSServerNotFound) {
		return nil, fmt.Errorf("failed to get media server config: %w", err)
	}
	config.LMSServer = lmsServer

	broker, err := db.MQTTBrokers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrMQTTBrokerNotFound) {
		return nil, fmt.Errorf("failed to get mqtt broker config: %w", err)
	}
	config.MQTTBroker = broker

	return config, nil
}
