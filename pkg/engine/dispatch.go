package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/lms"
)

// Command verbs.
const (
	VerbOn       = "on"
	VerbOff      = "off"
	VerbSetLevel = "set-level"
)

// Command is a user action on a control.
type Command struct {
	ControlID int    `json:"control_id"`
	Verb      string `json:"command"`
	Level     int    `json:"level"`
	Source    string `json:"source,omitempty"`
}

// NormalizeVerb maps the accepted spellings of a verb to its canonical
// form. Unknown verbs are returned lower-cased.
func NormalizeVerb(verb string) string {
	v := strings.ToLower(strings.TrimSpace(verb))
	switch v {
	case "set level", "set_level", "setlevel":
		return VerbSetLevel
	}
	return v
}

// Dispatch turns cmd into remote calls and a local state update. Commands
// that match no rule are ignored without error. The returned record
// describes the outcome and is also written to the command history.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) (device.CommandRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd.Verb = NormalizeVerb(cmd.Verb)
	rec := device.CommandRecord{
		ID:        uuid.NewString(),
		ControlID: cmd.ControlID,
		Command:   cmd.Verb,
		Level:     cmd.Level,
		Source:    cmd.Source,
		CreatedAt: e.now(),
	}

	logger := contextLogger(ctx).With().
		Str("command_id", rec.ID).
		Int("control", cmd.ControlID).
		Str("verb", cmd.Verb).
		Int("level", cmd.Level).
		Logger()

	applied, err := e.dispatch(logger.WithContext(ctx), cmd)
	switch {
	case err == nil && applied:
		rec.Outcome = device.OutcomeApplied
		logger.Info().Msg("Command applied")
	case err == nil:
		rec.Outcome = device.OutcomeIgnored
		logger.Debug().Msg("Command ignored")
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNoPlayers), errors.Is(err, device.ErrNotFound):
		rec.Outcome = device.OutcomeRejected
		rec.Error = err.Error()
		logger.Warn().Err(err).Msg("Command rejected")
	default:
		rec.Outcome = device.OutcomeFailed
		rec.Error = err.Error()
		logger.Error().Err(err).Msg("Command failed")
	}

	if e.history != nil {
		if herr := e.history.Record(ctx, rec); herr != nil {
			logger.Warn().Err(herr).Msg("Failed to record command")
		}
	}
	return rec, err
}

// dispatch reports whether cmd matched a rule. Rules are tried in order.
func (e *Engine) dispatch(ctx context.Context, cmd Command) (bool, error) {
	c, err := e.store.Get(ctx, cmd.ControlID)
	if err != nil {
		return false, err
	}

	switch {
	case c.Role == device.RolePlaylists && cmd.Verb == VerbSetLevel:
		return true, e.selectPlaylist(ctx, c, cmd.Level)

	case c.PlayerTag == "":
		return false, nil

	case c.Role == device.RoleActions:
		return e.runAction(ctx, c, cmd)

	case (c.Role == device.RoleShuffle || c.Role == device.RoleRepeat) &&
		(cmd.Verb == VerbSetLevel || cmd.Verb == VerbOff):
		return true, e.setMode(ctx, c, cmd)

	case c.Role == device.RoleMain && (cmd.Verb == VerbOn || cmd.Verb == VerbOff):
		on := cmd.Verb == VerbOn
		if err := lms.Power(ctx, e.inv, c.PlayerTag, on); err != nil {
			return true, err
		}
		level := 0
		if on {
			level = modeLevels[ModePlay]
		}
		return true, e.write(ctx, c, boolInt(on), strconv.Itoa(level), device.UpdateOptions{})

	case c.Role == device.RoleVolume && cmd.Verb == VerbSetLevel:
		if err := lms.SetVolume(ctx, e.inv, c.PlayerTag, cmd.Level); err != nil {
			return true, err
		}
		return true, e.write(ctx, c, 1, strconv.Itoa(cmd.Level), device.UpdateOptions{})

	case c.Role == device.RoleMain && cmd.Verb == VerbSetLevel:
		button, ok := levelButtons[cmd.Level]
		if !ok {
			return false, nil
		}
		if err := lms.Button(ctx, e.inv, c.PlayerTag, button); err != nil {
			return true, err
		}
		return true, e.write(ctx, c, 1, strconv.Itoa(cmd.Level), device.UpdateOptions{})
	}
	return false, nil
}

// selectPlaylist loads the playlist at level on the first player. Level 0
// only resets the selector.
func (e *Engine) selectPlaylist(ctx context.Context, c *device.Control, level int) error {
	if level < LevelStep {
		return e.write(ctx, c, 0, "0", device.UpdateOptions{})
	}

	entry, ok := e.catalog.EntryAtLevel(level)
	if !ok {
		return fmt.Errorf("%w: no playlist at level %d", ErrInvalidSelection, level)
	}
	if len(e.players) == 0 {
		return ErrNoPlayers
	}

	first := e.players[0]
	log.Ctx(ctx).Info().
		Str("playlist", entry.Name).
		Str("player", first.ID).
		Msg("Starting playlist on first player")
	if err := lms.LoadPlaylist(ctx, e.inv, first.ID, entry.ID); err != nil {
		return err
	}
	if e.scheduler != nil {
		e.scheduler.Accelerate(e.cfg.AccelerateTo)
	}
	return e.write(ctx, c, 1, strconv.Itoa(level), device.UpdateOptions{})
}

func (e *Engine) runAction(ctx context.Context, c *device.Control, cmd Command) (bool, error) {
	level := cmd.Level
	switch cmd.Verb {
	case VerbOff:
		level = 0
	case VerbSetLevel:
	default:
		return false, nil
	}

	switch DecodeLevel(level) {
	case ActionNone:
	case ActionSendText:
		if e.cfg.DisplayText == "" {
			return true, fmt.Errorf("%w: display text is empty", ErrConfiguration)
		}
		if err := lms.Show(ctx, e.inv, c.PlayerTag, e.cfg.DisplaySubject, e.cfg.DisplayText, e.cfg.DisplaySeconds); err != nil {
			return true, err
		}
	case ActionSync:
		var errs []error
		for _, p := range e.players {
			if p.ID == c.PlayerTag {
				continue
			}
			if err := lms.Sync(ctx, e.inv, c.PlayerTag, p.ID); err != nil {
				errs = append(errs, fmt.Errorf("sync %s: %w", p.ID, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return true, err
		}
	case ActionUnsync:
		if err := lms.Unsync(ctx, e.inv, c.PlayerTag); err != nil {
			return true, err
		}
	default:
		return true, fmt.Errorf("%w: no action at level %d", ErrInvalidSelection, level)
	}
	return true, e.write(ctx, c, boolInt(level > 0), strconv.Itoa(level), device.UpdateOptions{})
}

func (e *Engine) setMode(ctx context.Context, c *device.Control, cmd Command) error {
	code := 0
	if cmd.Verb == VerbSetLevel {
		code = DecodeLevel(cmd.Level)
	}
	if code < 0 || code > maxModeCode {
		return fmt.Errorf("%w: no %s mode at level %d", ErrInvalidSelection, c.Role, cmd.Level)
	}

	set := lms.Shuffle
	if c.Role == device.RoleRepeat {
		set = lms.Repeat
	}
	if err := set(ctx, e.inv, c.PlayerTag, code); err != nil {
		return err
	}
	return e.write(ctx, c, boolInt(code > 0), strconv.Itoa(EncodeLevel(code)), device.UpdateOptions{})
}
