package services

import "errors"

// Failure taxonomy surfaced to callers. Controllers map these onto HTTP
// status codes; everything else is treated as an internal error.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("store unavailable")
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInconclusive reports that a hint was recorded but the mutuality
	// check (or the promotion to a chat) did not complete. The caller must
	// not treat it as "no match".
	ErrInconclusive = errors.New("match check inconclusive")
)
