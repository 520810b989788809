package zendesk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// Bulk mutation endpoint paths. Both take a comma-joined id list with the
// DELETE verb; the delete path soft-deletes tickets, the scrub path
// irreversibly destroys already soft-deleted ones.
const (
	deletePath = "tickets/destroy_many.json"
	scrubPath  = "deleted_tickets/destroy_many.json"
)

// Mutator drives one phase of the bulk mutation protocol against a
// subdomain, partitioning ids into batches the remote service accepts.
//
// Mutator is phase-agnostic per call. The delete-before-scrub ordering
// for a given id set is the orchestrating caller's responsibility; the
// purge service enforces it by passing the full id list once per phase.
type Mutator struct {
	client    *Client
	subdomain string
}

// NewMutator creates a mutator for the given subdomain.
func NewMutator(client *Client, subdomain string) *Mutator {
	return &Mutator{client: client, subdomain: subdomain}
}

// PartitionIDs splits ids into consecutive batches of at most size.
// The concatenation of the batches equals ids in order. Batches share
// the backing array of ids; callers must not modify them.
func PartitionIDs(ids []int64, size int) [][]int64 {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	batches := make([][]int64, 0, (len(ids)+size-1)/size)
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	return append(batches, ids)
}

// Mutate submits one phase of mutation for ids, in batches of at most
// MaxBatchSize, in the order the id list was assembled. The first batch
// whose request exhausts its retries aborts the remaining un-submitted
// batches: skipping ahead would leave a partial mutation with no local
// record of which ids succeeded.
func (m *Mutator) Mutate(ctx context.Context, ids []int64, phase domain.MutationPhase) error {
	path := deletePath
	if phase == domain.PhaseScrub {
		path = scrubPath
	}

	batches := PartitionIDs(ids, MaxBatchSize)
	for i, batch := range batches {
		u, err := bulkMutationURL(m.subdomain, batch, path)
		if err != nil {
			return fmt.Errorf("%s batch %d/%d: %w", phase, i+1, len(batches), err)
		}
		logger.Debug("submitting %s batch %d/%d (%d ids)", phase, i+1, len(batches), len(batch))

		resp, err := m.client.Execute(ctx, http.MethodDelete, u)
		if err != nil {
			return fmt.Errorf("%s batch %d/%d: %w", phase, i+1, len(batches), err)
		}
		if resp.EndOfStream {
			// A 422 here means the ids were already gone remotely.
			logger.Warn("%s batch %d/%d rejected as already processed", phase, i+1, len(batches))
		}
	}
	return nil
}
