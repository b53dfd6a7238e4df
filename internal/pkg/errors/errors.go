package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrProviderUnavailable marks a failed call to an external AI provider
	// (embedding, extraction, term expansion, summarization). Callers recover
	// from it with the documented fallback paths; it never fails a request on
	// its own.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrStoreUnavailable marks a failed call to the knowledge store. Fatal
	// for the operation in progress.
	ErrStoreUnavailable = errors.New("store unavailable")
)
