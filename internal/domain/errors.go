package domain

import "errors"

// Sentinel errors shared across modules. Handlers map these onto HTTP
// status codes; repositories and services wrap them with context.
var (
	// ErrNotFound means the record does not exist for the requesting owner.
	// A record owned by someone else also reports ErrNotFound so that
	// ownership violations are indistinguishable from absence.
	ErrNotFound = errors.New("not found")

	// ErrInvalid means the input failed validation.
	ErrInvalid = errors.New("invalid input")

	// ErrUnavailable means an upstream dependency could not serve the
	// request and no cached fallback existed. Distinct from an empty
	// result: empty means "nothing there", unavailable means "can't know".
	ErrUnavailable = errors.New("temporarily unavailable")

	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("already exists")
)
