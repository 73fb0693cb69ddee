package device

import "errors"

var (
	// ErrNotFound indicates a control was not found
	ErrNotFound = errors.New("control not found")

	// ErrExists indicates a control id is already taken
	ErrExists = errors.New("control already exists")

	// ErrValidation indicates a command payload failed schema validation
	ErrValidation = errors.New("validation error")
)
