package shortener

import "errors"

var (
	// ErrInvalidInput is returned for missing or malformed input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when no account could be resolved for the caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned when a short id is already in use.
	ErrConflict = errors.New("short id already taken")
	// ErrNotFound is returned for unknown links and links owned by another account.
	ErrNotFound = errors.New("link not found")
)

// ErrIDCollision is returned when a generated short id collided with an
// existing one. The request can be retried as is.
var ErrIDCollision = &collisionError{}

type collisionError struct{}

func (*collisionError) Error() string { return "generated short id collided" }

func (*collisionError) Is(target error) bool { return target == ErrConflict }
