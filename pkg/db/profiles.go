package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

// Profile groups the settings and controls of one media server installation.
// Controls and command history are stored per profile, so switching profile
// switches the whole set of mirrored players.
type Profile struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileStore provides profile operations.
type ProfileStore interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	GetActive(ctx context.Context) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	SetActive(ctx context.Context, id int64) error
}

// Profiles returns a ProfileStore for this database.
func (db *DB) Profiles() ProfileStore {
	return &profileStore{db: db}
}

type profileStore struct {
	db *DB
}

const profileColumns = `id, name, is_active, created_at, updated_at`

func (s *profileStore) one(ctx context.Context, where string, args ...any) (*Profile, error) {
	p := &Profile{}
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, args...).
		Scan(&p.ID, &p.Name, &p.IsActive, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

func (s *profileStore) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.one(ctx, `id = ?`, id)
}

func (s *profileStore) GetByName(ctx context.Context, name string) (*Profile, error) {
	return s.one(ctx, `name = ?`, name)
}

func (s *profileStore) GetActive(ctx context.Context) (*Profile, error) {
	return s.one(ctx, `is_active = 1 LIMIT 1`)
}

// Create inserts p and sets its ID. Names are trimmed and must be unique.
func (s *profileStore) Create(ctx context.Context, p *Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("failed to create profile: empty name")
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (name, is_active) VALUES (?, ?)`, p.Name, p.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// SetActive makes id the only active profile.
func (s *profileStore) SetActive(ctx context.Context, id int64) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProfileNotFound
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE profiles SET is_active = (id = ?), updated_at = datetime('now')
			WHERE is_active = 1 OR id = ?
		`, id, id)
		return err
	})
}
