package zendesk

import (
	"errors"
	"fmt"
)

// Connector-specific errors.
var (
	// ErrInvalidCursor indicates a cursor URL the connector cannot use.
	ErrInvalidCursor = errors.New("zendesk: invalid cursor")

	// ErrBatchTooLarge indicates a bulk mutation batch above MaxBatchSize.
	ErrBatchTooLarge = errors.New("zendesk: batch exceeds maximum size")

	// ErrWalkerExhausted indicates a Walker was reused after its walk ended.
	ErrWalkerExhausted = errors.New("zendesk: walker already finished")
)

// MaxRetriesError indicates a request exhausted its retry budget.
// Callers should treat the enclosing enumeration or mutation as incomplete
// and requiring manual follow-up.
type MaxRetriesError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("zendesk: %d attempts exhausted for %s: %v", e.Attempts, e.URL, e.Last)
}

func (e *MaxRetriesError) Unwrap() error {
	return e.Last
}

// ProtocolError indicates the remote service violated its own contract,
// for example by omitting the next_page field or returning an unparseable
// creation date. Retrying cannot fix it; the enclosing walk is aborted so
// the under-collection is visible rather than silent.
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("zendesk: protocol violation at %s: %s", e.URL, e.Reason)
}

// IsMaxRetries checks if the error indicates an exhausted retry budget.
func IsMaxRetries(err error) bool {
	var mr *MaxRetriesError
	return errors.As(err, &mr)
}

// IsProtocolViolation checks if the error indicates a remote contract violation.
func IsProtocolViolation(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
