package driven

import (
	"context"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
)

// TicketSource enumerates tickets from the remote collection endpoint.
//
// A source is single-use: one Walk per source instance. Pagination is
// inherently sequential because each page's cursor is only discoverable
// from the previous page's response.
type TicketSource interface {
	// Walk follows pagination cursors until the collection is exhausted,
	// the live edge of the feed is reached, or ctx is cancelled. It returns
	// the tickets collected so far together with any error; on error the
	// partial result is still meaningful and may be checkpointed.
	Walk(ctx context.Context) ([]domain.Ticket, error)

	// Snapshot captures the walk's current position for checkpointing:
	// the pending cursor, collected tickets and seen ids.
	Snapshot() domain.Checkpoint
}

// TicketMutator performs bulk mutations against the remote service.
//
// A single call covers one phase for one id set. Callers driving the full
// delete-then-scrub lifecycle must complete the delete phase for an id set
// before starting the scrub phase for the same set.
type TicketMutator interface {
	// Mutate partitions ids into bounded batches and submits them in order.
	// The first failed batch aborts the remaining un-submitted batches.
	Mutate(ctx context.Context, ids []int64, phase domain.MutationPhase) error
}
