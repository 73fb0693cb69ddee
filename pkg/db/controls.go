package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/urmzd/lmsync/pkg/device"
)

// Controls returns a device.Store backed by the controls table of the
// current profile.
func (db *DB) Controls() device.Store {
	return &controlStore{db: db}
}

type controlStore struct {
	db *DB
}

const controlColumns = `id, name, kind, role, player_tag, level_names, nvalue, svalue, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanControl(row rowScanner) (*device.Control, error) {
	c := &device.Control{}
	var kind, role, levelNames, updatedAt string
	if err := row.Scan(&c.ID, &c.Name, &kind, &role, &c.PlayerTag, &levelNames, &c.NValue, &c.SValue, &updatedAt); err != nil {
		return nil, err
	}
	c.Kind = device.Kind(kind)
	c.Role = device.Role(role)
	if err := json.Unmarshal([]byte(levelNames), &c.LevelNames); err != nil {
		return nil, fmt.Errorf("control %d: decode level names: %w", c.ID, err)
	}
	if len(c.LevelNames) == 0 {
		c.LevelNames = nil
	}
	c.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return c, nil
}

func encodeLevelNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *controlStore) Create(ctx context.Context, c *device.Control) error {
	names, err := encodeLevelNames(c.LevelNames)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO controls (id, profile_id, name, kind, role, player_tag, level_names, nvalue, svalue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, s.db.profileID, c.Name, string(c.Kind), string(c.Role), c.PlayerTag, names, c.NValue, c.SValue)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return device.ErrExists
		}
		return fmt.Errorf("failed to create control: %w", err)
	}
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return nil
}

func (s *controlStore) Get(ctx context.Context, id int) (*device.Control, error) {
	c, err := scanControl(s.db.QueryRowContext(ctx, `
		SELECT `+controlColumns+` FROM controls WHERE id = ? AND profile_id = ?
	`, id, s.db.profileID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, device.ErrNotFound
	}
	return c, err
}

func (s *controlStore) List(ctx context.Context) ([]device.Control, error) {
	return s.query(ctx, `
		SELECT `+controlColumns+` FROM controls WHERE profile_id = ? ORDER BY id
	`, s.db.profileID)
}

func (s *controlStore) FindByTag(ctx context.Context, tag string) ([]device.Control, error) {
	return s.query(ctx, `
		SELECT `+controlColumns+` FROM controls WHERE profile_id = ? AND player_tag = ? ORDER BY id
	`, s.db.profileID, tag)
}

func (s *controlStore) query(ctx context.Context, q string, args ...any) ([]device.Control, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var controls []device.Control
	for rows.Next() {
		c, err := scanControl(rows)
		if err != nil {
			return nil, err
		}
		controls = append(controls, *c)
	}
	return controls, rows.Err()
}

func (s *controlStore) Update(ctx context.Context, id int, nValue int, sValue string, opts device.UpdateOptions) (bool, error) {
	wrote := false
	err := s.db.Tx(ctx, func(tx *sql.Tx) error {
		current, err := scanControl(tx.QueryRowContext(ctx, `
			SELECT `+controlColumns+` FROM controls WHERE id = ? AND profile_id = ?
		`, id, s.db.profileID))
		if errors.Is(err, sql.ErrNoRows) {
			return device.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !opts.Force && !current.Changed(nValue, sValue, opts) {
			return nil
		}

		levelNames := current.LevelNames
		if opts.LevelNames != nil {
			levelNames = slices.Clone(opts.LevelNames)
		}
		names, err := encodeLevelNames(levelNames)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE controls SET nvalue = ?, svalue = ?, level_names = ?, updated_at = datetime('now')
			WHERE id = ? AND profile_id = ?
		`, nValue, sValue, names, id, s.db.profileID); err != nil {
			return err
		}
		wrote = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return wrote, nil
}
