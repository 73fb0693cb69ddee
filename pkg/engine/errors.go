package engine

import "errors"

var (
	// ErrInvalidSelection is returned for a level that maps to no choice.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrConfiguration is returned when a command needs a setting that is
	// empty.
	ErrConfiguration = errors.New("missing configuration")

	// ErrNoPlayers is returned when a command needs a player and the last
	// poll found none.
	ErrNoPlayers = errors.New("no players available")
)
