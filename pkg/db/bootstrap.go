package db

import (
	"context"
	"errors"
	"fmt"
)

// Bootstrap makes sure a profile called name exists and is active. A newly
// created profile gets the API listener on 0.0.0.0:8080 and media server
// settings taken from media.
func (db *DB) Bootstrap(ctx context.Context, name string, media LMSServer) (*Profile, error) {
	profiles := db.Profiles()

	profile, err := profiles.GetByName(ctx, name)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if profile == nil {
		profile = &Profile{Name: name}
		if err := profiles.Create(ctx, profile); err != nil {
			return nil, err
		}

		if err := db.APIServers().Save(ctx, &APIServer{
			ProfileID: profile.ID,
			Host:      "0.0.0.0",
			Port:      8080,
		}); err != nil {
			return nil, fmt.Errorf("failed to create default API server: %w", err)
		}

		media.ProfileID = profile.ID
		if err := db.LMSServers().Save(ctx, &media); err != nil {
			return nil, fmt.Errorf("failed to create media server config: %w", err)
		}
	}

	if !profile.IsActive {
		if err := profiles.SetActive(ctx, profile.ID); err != nil {
			return nil, fmt.Errorf("failed to activate profile: %w", err)
		}
		profile.IsActive = true
	}

	db.UseProfile(profile.ID)
	return profile, nil
}

// NeedsBootstrap returns true if the database has no profile yet.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
