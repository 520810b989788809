package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
)

type fakeSource struct {
	tickets []domain.Ticket
	err     error
	cp      domain.Checkpoint
}

func (f *fakeSource) Walk(context.Context) ([]domain.Ticket, error) {
	return f.tickets, f.err
}

func (f *fakeSource) Snapshot() domain.Checkpoint {
	return f.cp
}

type mutateCall struct {
	ids   []int64
	phase domain.MutationPhase
}

type fakeMutator struct {
	calls   []mutateCall
	failOn  domain.MutationPhase
	failErr error
}

func (f *fakeMutator) Mutate(_ context.Context, ids []int64, phase domain.MutationPhase) error {
	f.calls = append(f.calls, mutateCall{ids: append([]int64(nil), ids...), phase: phase})
	if f.failErr != nil && phase == f.failOn {
		return f.failErr
	}
	return nil
}

type fakeCheckpoints struct {
	saved   []domain.Checkpoint
	cleared int
	saveErr error
}

func (f *fakeCheckpoints) Save(_ context.Context, cp domain.Checkpoint) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cp)
	return nil
}

func (f *fakeCheckpoints) Load(context.Context) (*domain.Checkpoint, error) {
	return nil, domain.ErrNoCheckpoint
}

func (f *fakeCheckpoints) Clear(context.Context) error {
	f.cleared++
	return nil
}

func someTickets() []domain.Ticket {
	return []domain.Ticket{
		{ID: 3, CreatedAt: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), Status: domain.StatusClosed},
		{ID: 1, CreatedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), Status: domain.StatusClosed},
		{ID: 2, CreatedAt: time.Date(2020, 1, 30, 0, 0, 0, 0, time.UTC), Status: domain.StatusOpen},
	}
}

func TestPurgeService_Plan(t *testing.T) {
	today := time.Date(2020, 2, 5, 12, 0, 0, 0, time.UTC)

	t.Run("filters and sorts the enumerated tickets", func(t *testing.T) {
		src := &fakeSource{tickets: someTickets()}
		svc := NewPurgeService(src, &fakeMutator{}, nil)
		svc.now = func() time.Time { return today }

		plan, err := svc.Plan(context.Background(), 30, nil)

		require.NoError(t, err)
		require.False(t, plan.Empty())
		assert.Equal(t, []int64{1, 3}, plan.IDs(), "oldest first, recent ticket excluded")
		assert.Equal(t, int64(1), plan.Oldest().ID)
		assert.Equal(t, int64(3), plan.Newest().ID)
	})

	t.Run("narrows to allowed statuses", func(t *testing.T) {
		src := &fakeSource{tickets: someTickets()}
		svc := NewPurgeService(src, &fakeMutator{}, nil)
		svc.now = func() time.Time { return today }

		plan, err := svc.Plan(context.Background(), 30, []domain.Status{domain.StatusSolved})

		require.NoError(t, err)
		assert.True(t, plan.Empty())
	})

	t.Run("saves a checkpoint when the walk fails", func(t *testing.T) {
		cp := domain.NewCheckpoint("incremental", "https://x?start_time=42",
			someTickets()[:1], []int64{3})
		src := &fakeSource{err: context.Canceled, tickets: someTickets()[:1], cp: cp}
		store := &fakeCheckpoints{}
		svc := NewPurgeService(src, &fakeMutator{}, store)

		_, err := svc.Plan(context.Background(), 30, nil)

		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, store.saved, 1)
		assert.Equal(t, "https://x?start_time=42", store.saved[0].Cursor)
	})

	t.Run("a checkpoint write failure does not mask the walk error", func(t *testing.T) {
		src := &fakeSource{err: context.Canceled}
		store := &fakeCheckpoints{saveErr: errors.New("disk full")}
		svc := NewPurgeService(src, &fakeMutator{}, store)

		_, err := svc.Plan(context.Background(), 30, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("works without a checkpoint store", func(t *testing.T) {
		src := &fakeSource{err: context.Canceled}
		svc := NewPurgeService(src, &fakeMutator{}, nil)

		_, err := svc.Plan(context.Background(), 30, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPurgeService_Purge(t *testing.T) {
	t.Run("delete only when scrub is off", func(t *testing.T) {
		mut := &fakeMutator{}
		svc := NewPurgeService(&fakeSource{}, mut, nil)

		err := svc.Purge(context.Background(), []int64{1, 2, 3}, false)

		require.NoError(t, err)
		require.Len(t, mut.calls, 1)
		assert.Equal(t, domain.PhaseDelete, mut.calls[0].phase)
		assert.Equal(t, []int64{1, 2, 3}, mut.calls[0].ids)
	})

	t.Run("scrub runs after the delete phase over the same ids", func(t *testing.T) {
		mut := &fakeMutator{}
		svc := NewPurgeService(&fakeSource{}, mut, nil)

		err := svc.Purge(context.Background(), []int64{5, 6}, true)

		require.NoError(t, err)
		require.Len(t, mut.calls, 2)
		assert.Equal(t, domain.PhaseDelete, mut.calls[0].phase)
		assert.Equal(t, domain.PhaseScrub, mut.calls[1].phase)
		assert.Equal(t, mut.calls[0].ids, mut.calls[1].ids)
	})

	t.Run("a failed delete phase suppresses the scrub phase", func(t *testing.T) {
		mut := &fakeMutator{failOn: domain.PhaseDelete, failErr: errors.New("boom")}
		svc := NewPurgeService(&fakeSource{}, mut, nil)

		err := svc.Purge(context.Background(), []int64{1}, true)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete phase")
		require.Len(t, mut.calls, 1)
		assert.Equal(t, domain.PhaseDelete, mut.calls[0].phase)
	})

	t.Run("no ids is a no-op", func(t *testing.T) {
		mut := &fakeMutator{}
		svc := NewPurgeService(&fakeSource{}, mut, nil)

		require.NoError(t, svc.Purge(context.Background(), nil, true))
		assert.Empty(t, mut.calls)
	})

	t.Run("clears the checkpoint after a completed purge", func(t *testing.T) {
		store := &fakeCheckpoints{}
		svc := NewPurgeService(&fakeSource{}, &fakeMutator{}, store)

		require.NoError(t, svc.Purge(context.Background(), []int64{1}, false))
		assert.Equal(t, 1, store.cleared)
	})

	t.Run("keeps the checkpoint when a phase fails", func(t *testing.T) {
		store := &fakeCheckpoints{}
		mut := &fakeMutator{failOn: domain.PhaseScrub, failErr: errors.New("boom")}
		svc := NewPurgeService(&fakeSource{}, mut, store)

		err := svc.Purge(context.Background(), []int64{1}, true)

		require.Error(t, err)
		assert.Zero(t, store.cleared)
	})
}
