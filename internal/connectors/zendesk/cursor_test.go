package zendesk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursorFlavor(t *testing.T) {
	got, err := ParseCursorFlavor("incremental")
	require.NoError(t, err)
	assert.Equal(t, FlavorIncremental, got)

	got, err = ParseCursorFlavor("search")
	require.NoError(t, err)
	assert.Equal(t, FlavorSearch, got)

	_, err = ParseCursorFlavor("bulk")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestParseWatermark(t *testing.T) {
	t.Run("extracts the start_time parameter", func(t *testing.T) {
		sec, ok := ParseWatermark("https://bobco.zendesk.com/api/v2/incremental/tickets.json?start_time=1438905600")
		require.True(t, ok)
		assert.Equal(t, int64(1438905600), sec)
	})

	t.Run("missing watermark yields false", func(t *testing.T) {
		_, ok := ParseWatermark("https://bobco.zendesk.com/api/v2/search.json?query=x")
		assert.False(t, ok)
	})
}

func TestIncrementalURL(t *testing.T) {
	got := IncrementalURL("bobco", 0)
	assert.Equal(t, "https://bobco.zendesk.com/api/v2/incremental/tickets.json?start_time=0", got)

	sec, ok := ParseWatermark(IncrementalURL("bobco", 1438905600))
	require.True(t, ok)
	assert.Equal(t, int64(1438905600), sec)
}

func TestSearchURL(t *testing.T) {
	today, err := time.Parse("2006-01-02", "2020-02-05")
	require.NoError(t, err)

	got := SearchURL("codebros-dot-com", 30, today)

	// The boundary is today-(days-1): tickets created on the boundary or
	// later are not old.
	assert.Contains(t, got, "codebros-dot-com.zendesk.com/api/v2/search.json")
	assert.Contains(t, got, "created%3C2020-01-07+type%3Aticket")
}

func TestBulkMutationURL(t *testing.T) {
	t.Run("joins ids with commas", func(t *testing.T) {
		got, err := bulkMutationURL("bobco", []int64{1, 2, 3}, deletePath)
		require.NoError(t, err)
		assert.Equal(t, "https://bobco.zendesk.com/api/v2/tickets/destroy_many.json?ids=1,2,3", got)
	})

	t.Run("scrub phase targets the deleted tickets path", func(t *testing.T) {
		got, err := bulkMutationURL("bobco", []int64{5}, scrubPath)
		require.NoError(t, err)
		assert.Equal(t, "https://bobco.zendesk.com/api/v2/deleted_tickets/destroy_many.json?ids=5", got)
	})

	t.Run("rejects oversized batches", func(t *testing.T) {
		ids := make([]int64, MaxBatchSize+1)
		_, err := bulkMutationURL("bobco", ids, deletePath)
		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})
}
