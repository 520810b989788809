package domain

import "time"

// CheckpointVersion is the current checkpoint schema version.
const CheckpointVersion = 1

// Checkpoint is a durable snapshot of an interrupted enumeration walk.
// It carries everything needed to resume from the saved cursor instead
// of restarting the whole walk: the cursor itself, the tickets collected
// so far, and the ids already seen (the incremental feed can return a
// ticket more than once).
//
// Checkpoints are written on interrupt and consumed on resume; the happy
// path never touches them.
type Checkpoint struct {
	// Version is the schema version for future migrations.
	Version int `json:"v"`

	// Flavor names the cursor flavor the walk was using. A walk must be
	// resumed with the same flavor it was saved with.
	Flavor string `json:"flavor"`

	// Cursor is the next-page URL the walk would have fetched next.
	Cursor string `json:"cursor"`

	// Tickets are the records collected before the interrupt.
	Tickets []Ticket `json:"tickets"`

	// SeenIDs are the ticket ids already observed, for deduplication.
	SeenIDs []int64 `json:"seen_ids"`

	// SavedAt is when the checkpoint was written.
	SavedAt time.Time `json:"saved_at"`
}

// NewCheckpoint creates a checkpoint at the current schema version.
func NewCheckpoint(flavor, cursor string, tickets []Ticket, seenIDs []int64) Checkpoint {
	return Checkpoint{
		Version: CheckpointVersion,
		Flavor:  flavor,
		Cursor:  cursor,
		Tickets: tickets,
		SeenIDs: seenIDs,
		SavedAt: time.Now(),
	}
}
