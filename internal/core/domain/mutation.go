package domain

// MutationPhase identifies one pass of the two-phase purge protocol.
//
// The remote service requires every delete batch for an id set to be
// acknowledged before any scrub batch for the same set is issued. A scrub
// issued against a ticket that has not been soft-deleted silently fails
// remotely, so the ordering is a hard protocol constraint.
type MutationPhase string

const (
	// PhaseDelete soft-deletes tickets. Deleted tickets remain recoverable
	// on the remote service until scrubbed.
	PhaseDelete MutationPhase = "delete"

	// PhaseScrub irreversibly overwrites sensitive fields on tickets that
	// have already been soft-deleted.
	PhaseScrub MutationPhase = "scrub"
)
