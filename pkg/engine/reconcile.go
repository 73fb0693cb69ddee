package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/lms"
)

// blankTrack is shown on the track control while nothing is playing.
const blankTrack = " "

// Reconcile runs one polling cycle. It fails only when the player list
// cannot be fetched; per-player failures are logged and skipped.
func (e *Engine) Reconcile(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := contextLogger(ctx).With().Str("cycle", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	players, err := lms.ServerStatus(ctx, e.inv)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list players")
		e.publishSnapshot(err.Error())
		return fmt.Errorf("list players: %w", err)
	}
	e.players = players

	groups := make([]*Group, len(players))
	for i, p := range players {
		g, err := e.registry.Ensure(ctx, p.ID, p.Name)
		if err != nil {
			logger.Error().Err(err).Str("player", p.ID).Msg("Failed to ensure controls")
			continue
		}
		groups[i] = g
	}

	if err := e.catalog.Refresh(ctx, e.inv); err != nil {
		logger.Warn().Err(err).Msg("Failed to refresh playlists")
	}
	if err := e.syncSelector(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to sync playlist selector")
	}

	for i, p := range players {
		g := groups[i]
		if g == nil {
			continue
		}
		status, err := lms.Status(ctx, e.inv, p.ID)
		if err != nil {
			logger.Warn().Err(err).Str("player", p.ID).Msg("Failed to fetch status, skipping player")
			continue
		}
		if e.cfg.Debug {
			logger.Debug().Str("player", p.ID).Str("name", p.Name).Interface("status", status).Msg("Player status")
		}

		if err := e.applyPlayer(ctx, g, status); err != nil {
			logger.Error().Err(err).Str("player", p.ID).Msg("Failed to update controls")
		}
		if i == 0 {
			if err := e.applyPlaylist(ctx, status); err != nil {
				logger.Error().Err(err).Msg("Failed to update playlist selector")
			}
		}
	}

	e.publishSnapshot("")
	return nil
}

// PlayerState is the canonical state derived from one status record.
type PlayerState struct {
	Power     bool
	Mode      string
	MainLevel int
	Track     Track
}

// DeriveState reads power and mode from status. A missing mode counts as
// stopped.
func DeriveState(status map[string]any) PlayerState {
	s := PlayerState{
		Power: lms.Int(status, "power", 0) == 1,
		Mode:  lms.String(status, "mode"),
	}
	if s.Mode == "" {
		s.Mode = ModeStop
	}
	s.MainLevel = MainLevel(s.Power, s.Mode)
	return s
}

func (e *Engine) applyPlayer(ctx context.Context, g *Group, status map[string]any) error {
	st := DeriveState(status)
	st.Track = e.resolver.Resolve(g.PlayerID, status)

	if err := e.writeID(ctx, g.Main, boolInt(st.Power), strconv.Itoa(st.MainLevel), device.UpdateOptions{}); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	if err := e.applyVolume(ctx, g.Volume, st.Power, status); err != nil {
		return fmt.Errorf("volume: %w", err)
	}
	if err := e.applyTrack(ctx, g, st); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	if err := e.applyMode(ctx, g.Shuffle, status, "playlist shuffle"); err != nil {
		return fmt.Errorf("shuffle: %w", err)
	}
	if err := e.applyMode(ctx, g.Repeat, status, "playlist repeat"); err != nil {
		return fmt.Errorf("repeat: %w", err)
	}
	return nil
}

// applyVolume mirrors the mixer volume. A value that cannot be parsed keeps
// the stored one; negative values are kept as sent.
func (e *Engine) applyVolume(ctx context.Context, id int, power bool, status map[string]any) error {
	if id == 0 {
		return nil
	}
	c, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	value := "0"
	if power {
		value = c.SValue
		if v, err := lms.ParseInt(status["mixer volume"]); err == nil {
			value = strconv.Itoa(v)
		} else {
			zerolog.Ctx(ctx).Debug().Err(err).Int("control", id).Msg("Unreadable volume, keeping stored value")
		}
	}
	return e.write(ctx, c, boolInt(power), value, device.UpdateOptions{})
}

func (e *Engine) applyTrack(ctx context.Context, g *Group, st PlayerState) error {
	if g.Track == 0 {
		return nil
	}
	c, err := e.store.Get(ctx, g.Track)
	if err != nil {
		return err
	}

	if e.cfg.BlankIdleTrack && (!st.Power || st.Mode != ModePlay) {
		return e.write(ctx, c, 0, blankTrack, device.UpdateOptions{})
	}

	label := st.Track.Label
	if c.SValue != label || st.Track.Changed {
		zerolog.Ctx(ctx).Info().
			Str("player", g.PlayerID).
			Str("name", g.Name).
			Str("track", label).
			Msg("Now playing")
	}
	return e.write(ctx, c, 0, label, device.UpdateOptions{Force: st.Track.Changed})
}

// applyMode mirrors a 0..2 mode code onto a selector.
func (e *Engine) applyMode(ctx context.Context, id int, status map[string]any, key string) error {
	if id == 0 || !lms.Has(status, key) {
		return nil
	}
	code := lms.Int(status, key, 0)
	if code < 0 || code > maxModeCode {
		code = 0
	}
	return e.writeID(ctx, id, boolInt(code > 0), strconv.Itoa(EncodeLevel(code)), device.UpdateOptions{})
}
