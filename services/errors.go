package services

import "errors"

// Error kinds surfaced by the engagement services. Handlers map these to HTTP
// statuses; callers distinguish them with errors.Is.
var (
	// ErrNotFound: a referenced article, category or achievement does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: the caller passed an unusable value (empty user ID,
	// negative delta, ...).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable: the underlying repository failed or timed out; the whole
	// operation may be retried.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrConflict: a concurrent update won a compare-and-set race; the caller
	// should retry the whole operation.
	ErrConflict = errors.New("conflicting concurrent update")
)
