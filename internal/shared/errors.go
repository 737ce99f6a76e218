package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSequenceMissing occurs when a named document counter has no row.
	// Numbering never falls back to timestamps; the counter must be seeded.
	ErrSequenceMissing = errors.New("sequence counter missing")
)
