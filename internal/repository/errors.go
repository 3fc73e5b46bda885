package repository

import "errors"

var (
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyDecided and ErrAlreadySold mark idempotent no-op outcomes on
	// records whose status is already terminal. They are distinct from
	// ErrNotFound so callers can tell "someone already acted" apart from a
	// bad id.
	ErrAlreadyDecided = errors.New("moderation record already decided")
	ErrAlreadySold    = errors.New("listing already sold")

	ErrDuplicateRef     = errors.New("publication ref already registered")
	ErrConnectionFailed = errors.New("database connection failed")
)
