package service

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires a resolvable
	// caller identity and none is present. No state is mutated.
	ErrUnauthenticated = errors.New("caller identity could not be resolved")

	// ErrInvalidArgument covers empty content and malformed ids.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is surfaced for lookups of absent documents. Mark-read style
	// operations treat absence as a no-op instead.
	ErrNotFound = errors.New("not found")
)

// Wire error codes pushed back to clients.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeStorage         = "storage_error"
)

// ErrorCode maps a service error to its wire code. Anything outside the
// client-originated taxonomy is reported as a storage failure.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeStorage
	}
}
