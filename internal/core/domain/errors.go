package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStatus indicates an unknown ticket status name.
	ErrInvalidStatus = errors.New("invalid ticket status")

	// ErrInvalidAuthScheme indicates an unknown authentication scheme name.
	ErrInvalidAuthScheme = errors.New("invalid auth scheme")

	// ErrTicketNotFound indicates the requested ticket was not reachable
	// through the enumeration feed. The ticket may have been created or
	// modified too recently to appear.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrNoCheckpoint indicates there is no saved checkpoint to resume from.
	ErrNoCheckpoint = errors.New("no checkpoint saved")
)
