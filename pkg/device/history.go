package device

import (
	"context"
	"time"
)

// Command outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// CommandRecord is one dispatched command.
type CommandRecord struct {
	ID        string    `json:"id"`
	ControlID int       `json:"control_id"`
	Command   string    `json:"command"`
	Level     int       `json:"level"`
	Source    string    `json:"source,omitempty"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// History records dispatched commands.
type History interface {
	Record(ctx context.Context, rec CommandRecord) error
	Recent(ctx context.Context, limit int) ([]CommandRecord, error)
}
