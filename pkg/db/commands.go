package db

import (
	"context"
	"fmt"
	"time"

	"github.com/urmzd/lmsync/pkg/device"
)

// Commands returns the command history of the current profile.
func (db *DB) Commands() device.History {
	return &commandStore{db: db}
}

type commandStore struct {
	db *DB
}

func (s *commandStore) Record(ctx context.Context, rec device.CommandRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commands (id, profile_id, control_id, command, level, source, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, s.db.profileID, rec.ControlID, rec.Command, rec.Level, rec.Source, rec.Outcome, rec.Error,
		created.UTC().Format("2006-01-02 15:04:05.000"))
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

// Recent returns at most limit commands, newest first.
func (s *commandStore) Recent(ctx context.Context, limit int) ([]device.CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, control_id, command, level, source, outcome, error, created_at
		FROM commands WHERE profile_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, s.db.profileID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []device.CommandRecord
	for rows.Next() {
		var rec device.CommandRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ControlID, &rec.Command, &rec.Level, &rec.Source, &rec.Outcome, &rec.Error, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse("2006-01-02 15:04:05.000", createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
