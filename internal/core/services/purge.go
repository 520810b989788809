// Package services implements the core orchestration logic for zenpurge.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/core/ports/driven"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// PurgeService coordinates the enumerate → filter → mutate lifecycle.
//
// It owns the two-phase ordering guarantee: Purge runs the complete
// delete pass over an id set before the first scrub batch for that set
// is issued. Interleaving the phases is not expressible through this API.
type PurgeService struct {
	source      driven.TicketSource
	mutator     driven.TicketMutator
	checkpoints driven.CheckpointStore

	now func() time.Time
}

// NewPurgeService creates a purge service. checkpoints may be nil, in
// which case interrupted walks are not resumable.
func NewPurgeService(
	source driven.TicketSource,
	mutator driven.TicketMutator,
	checkpoints driven.CheckpointStore,
) *PurgeService {
	return &PurgeService{
		source:      source,
		mutator:     mutator,
		checkpoints: checkpoints,
		now:         time.Now,
	}
}

// PurgePlan is the outcome of an enumeration: the tickets that qualify
// for purging, sorted oldest first.
type PurgePlan struct {
	Tickets []domain.Ticket
}

// IDs returns the ticket ids in plan order (oldest first).
func (p *PurgePlan) IDs() []int64 {
	return domain.TicketIDs(p.Tickets)
}

// Empty reports whether the plan selects no tickets.
func (p *PurgePlan) Empty() bool {
	return len(p.Tickets) == 0
}

// Oldest returns the earliest-created ticket in the plan.
func (p *PurgePlan) Oldest() domain.Ticket {
	return p.Tickets[0]
}

// Newest returns the latest-created ticket in the plan.
func (p *PurgePlan) Newest() domain.Ticket {
	return p.Tickets[len(p.Tickets)-1]
}

// Plan enumerates the collection and filters it down to tickets strictly
// older than minAgeDays, optionally narrowed to the allowed statuses.
//
// When the walk fails or is interrupted, the walker's position is saved
// to the checkpoint store (best effort) before the error is propagated,
// so a later run can resume instead of restarting. The error always
// surfaces: partial progress must be visible to the operator, never
// silently swallowed.
func (s *PurgeService) Plan(ctx context.Context, minAgeDays int, allowed []domain.Status) (*PurgePlan, error) {
	tickets, err := s.source.Walk(ctx)
	if err != nil {
		s.saveCheckpoint()
		return nil, fmt.Errorf("enumerate tickets: %w", err)
	}

	aged := domain.FilterAged(tickets, minAgeDays, allowed, s.now())
	logger.Info("%d of %d enumerated tickets are older than %d days", len(aged), len(tickets), minAgeDays)
	return &PurgePlan{Tickets: aged}, nil
}

// Purge soft-deletes every ticket in ids and, when scrub is set, then
// irreversibly scrubs them. The scrub phase starts only after the delete
// phase has completed for the whole id set; the remote service defines a
// scrub against a not-yet-deleted ticket to fail silently.
//
// A failed batch aborts the run with the remaining batches un-submitted.
// On full success any saved checkpoint is cleared.
func (s *PurgeService) Purge(ctx context.Context, ids []int64, scrub bool) error {
	if len(ids) == 0 {
		return nil
	}

	if err := s.mutator.Mutate(ctx, ids, domain.PhaseDelete); err != nil {
		return fmt.Errorf("delete phase: %w", err)
	}
	logger.Info("delete phase acknowledged for %d tickets", len(ids))

	if scrub {
		if err := s.mutator.Mutate(ctx, ids, domain.PhaseScrub); err != nil {
			return fmt.Errorf("scrub phase: %w", err)
		}
		logger.Info("scrub phase acknowledged for %d tickets", len(ids))
	}

	s.clearCheckpoint(ctx)
	return nil
}

// saveCheckpoint persists the walker position after a failed or
// interrupted walk. Best effort: the walk error matters more than a
// checkpoint write failure. A fresh context is used because the walk's
// context is typically already cancelled at this point.
func (s *PurgeService) saveCheckpoint() {
	if s.checkpoints == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cp := s.source.Snapshot()
	if err := s.checkpoints.Save(ctx, cp); err != nil {
		logger.Warn("could not save checkpoint: %v", err)
		return
	}
	logger.Info("saved checkpoint with %d tickets at cursor %s", len(cp.Tickets), cp.Cursor)
}

// clearCheckpoint removes any saved checkpoint once a purge completed.
func (s *PurgeService) clearCheckpoint(ctx context.Context) {
	if s.checkpoints == nil {
		return
	}
	if err := s.checkpoints.Clear(ctx); err != nil && !errors.Is(err, domain.ErrNoCheckpoint) {
		logger.Warn("could not clear checkpoint: %v", err)
	}
}
