package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrLMSServerNotFound = errors.New("media server config not found")

// LMSServer holds the connection and polling settings for a media server.
type LMSServer struct {
	ID        int64
	ProfileID int64
	Host      string
	Port      int
	Username  string
	Password  string

	PollInterval time.Duration
	MaxPlaylists int
	Debug        bool

	// DisplaySubject and DisplayText make up the message sent by the
	// SendText action. An empty DisplayText disables the action.
	DisplaySubject string
	DisplayText    string

	// ExtendedControls adds shuffle and repeat selectors to new groups.
	ExtendedControls bool

	// BlankIdleTrack shows a blank track text while a player is off,
	// stopped or paused instead of the composed label.
	BlankIdleTrack bool

	UpdatedAt time.Time
}

// DefaultLMSServer returns the settings used when nothing is configured.
func DefaultLMSServer() LMSServer {
	return LMSServer{
		Host:             "127.0.0.1",
		Port:             9000,
		PollInterval:     10 * time.Second,
		MaxPlaylists:     10,
		DisplaySubject:   "lmsync",
		ExtendedControls: true,
		BlankIdleTrack:   true,
	}
}

// LMSServerStore provides media server config operations.
type LMSServerStore interface {
	Get(ctx context.Context, profileID int64) (*LMSServer, error)
	Save(ctx context.Context, l *LMSServer) error
}

// LMSServers returns an LMSServerStore for this database.
func (db *DB) LMSServers() LMSServerStore {
	return &lmsServerStore{db: db}
}

type lmsServerStore struct {
	db *DB
}

func (s *lmsServerStore) Get(ctx context.Context, profileID int64) (*LMSServer, error) {
	l := &LMSServer{}
	var pollSeconds int
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, host, port, username, password, poll_interval_seconds,
		       max_playlists, debug, display_subject, display_text, extended_controls,
		       blank_idle_track, updated_at
		FROM lms_servers WHERE profile_id = ?
	`, profileID).Scan(&l.ID, &l.ProfileID, &l.Host, &l.Port, &l.Username, &l.Password, &pollSeconds,
		&l.MaxPlaylists, &l.Debug, &l.DisplaySubject, &l.DisplayText, &l.ExtendedControls,
		&l.BlankIdleTrack, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLMSServerNotFound
	}
	if err != nil {
		return nil, err
	}
	l.PollInterval = time.Duration(pollSeconds) * time.Second
	l.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return l, nil
}

// Save inserts or replaces the settings of l.ProfileID.
func (s *lmsServerStore) Save(ctx context.Context, l *LMSServer) error {
	pollSeconds := int(l.PollInterval / time.Second)
	if pollSeconds < 1 {
		pollSeconds = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lms_servers (profile_id, host, port, username, password, poll_interval_seconds,
		                         max_playlists, debug, display_subject, display_text,
		                         extended_controls, blank_idle_track)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			host = excluded.host,
			port = excluded.port,
			username = excluded.username,
			password = excluded.password,
			poll_interval_seconds = excluded.poll_interval_seconds,
			max_playlists = excluded.max_playlists,
			debug = excluded.debug,
			display_subject = excluded.display_subject,
			display_text = excluded.display_text,
			extended_controls = excluded.extended_controls,
			blank_idle_track = excluded.blank_idle_track,
			updated_at = datetime('now')
	`, l.ProfileID, l.Host, l.Port, l.Username, l.Password, pollSeconds,
		l.MaxPlaylists, l.Debug, l.DisplaySubject, l.DisplayText,
		l.ExtendedControls, l.BlankIdleTrack)
	if err != nil {
		return fmt.Errorf("failed to save media server config: %w", err)
	}
	return nil
}
