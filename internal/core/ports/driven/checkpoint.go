package driven

import (
	"context"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
)

// CheckpointStore persists enumeration progress across process restarts.
//
// The store holds at most one checkpoint: saving replaces any previous one.
// Load returns domain.ErrNoCheckpoint when nothing has been saved.
type CheckpointStore interface {
	Save(ctx context.Context, cp domain.Checkpoint) error
	Load(ctx context.Context) (*domain.Checkpoint, error)
	Clear(ctx context.Context) error
}
