package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidMenu      = errors.New("invalid menu")

	// Matching outcomes. These never escape the engine as returned errors;
	// ParseResult.Err maps a failed result back to one of them.
	ErrEmptyUtterance   = errors.New("no meaningful words in utterance")
	ErrNoMatch          = errors.New("no menu item matched")
	ErrIndexUnavailable = errors.New("menu index unavailable")
)
