package db

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

// Schema SQL for version 1
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Profiles (one per media server installation)
CREATE TABLE IF NOT EXISTS profiles (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    is_active   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- API server config
CREATE TABLE IF NOT EXISTS api_servers (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    profile_id  INTEGER NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
    host        TEXT NOT NULL DEFAULT '0.0.0.0',
    port        INTEGER NOT NULL DEFAULT 8080,
    created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Lyrion Media Server connection and polling settings
CREATE TABLE IF NOT EXISTS lms_servers (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    profile_id            INTEGER NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
    host                  TEXT NOT NULL DEFAULT '127.0.0.1',
    port                  INTEGER NOT NULL DEFAULT 9000,
    username              TEXT NOT NULL DEFAULT '',
    password              TEXT NOT NULL DEFAULT '',
    poll_interval_seconds INTEGER NOT NULL DEFAULT 10,
    max_playlists         INTEGER NOT NULL DEFAULT 10,
    debug                 INTEGER NOT NULL DEFAULT 0,
    display_subject       TEXT NOT NULL DEFAULT 'lmsync',
    display_text          TEXT NOT NULL DEFAULT '',
    extended_controls     INTEGER NOT NULL DEFAULT 1,
    blank_idle_track      INTEGER NOT NULL DEFAULT 1,
    created_at            TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Controls
CREATE TABLE IF NOT EXISTS controls (
    id           INTEGER NOT NULL,
    profile_id   INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    kind         TEXT NOT NULL,
    role         TEXT NOT NULL,
    player_tag   TEXT NOT NULL DEFAULT '',
    level_names  TEXT NOT NULL DEFAULT '[]',
    nvalue       INTEGER NOT NULL DEFAULT 0,
    svalue       TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (profile_id, id)
);

-- Create indexes for common queries
CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(is_active);
CREATE INDEX IF NOT EXISTS idx_controls_profile ON controls(profile_id);
CREATE INDEX IF NOT EXISTS idx_controls_tag ON controls(player_tag);
`

// Schema SQL for version 2
const schemaV2 = `
-- MQTT broker used for state publishing and command topics
CREATE TABLE IF NOT EXISTS mqtt_brokers (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    profile_id   INTEGER NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
    url          TEXT NOT NULL,
    username     TEXT NOT NULL DEFAULT '',
    password     TEXT NOT NULL DEFAULT '',
    topic_prefix TEXT NOT NULL DEFAULT 'lmsync',
    created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Dispatched command history
CREATE TABLE IF NOT EXISTS commands (
    id          TEXT PRIMARY KEY,
    profile_id  INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    control_id  INTEGER NOT NULL,
    command     TEXT NOT NULL,
    level       INTEGER NOT NULL DEFAULT 0,
    source      TEXT NOT NULL DEFAULT '',
    outcome     TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_commands_profile_created ON commands(profile_id, created_at);
`

// Migrate runs database migrations to bring the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := db.applySchema(ctx, 1, schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
	}
	if version < 2 {
		if err := db.applySchema(ctx, 2, schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if no schema exists.
func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&count)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (db *DB) applySchema(ctx context.Context, version int, ddl string) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}

		return nil
	})
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return db.getSchemaVersion(ctx)
}
