package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrPersistenceFailure marks a failed score write; the unit can be retried.
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrPickLocked         = errors.New("pick is locked")
)

// markPersistence wraps a store error so callers can match ErrPersistenceFailure.
func markPersistence(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrPersistenceFailure)
}
