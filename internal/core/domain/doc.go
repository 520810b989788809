// Package domain defines the core business entities for zenpurge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Ticket: An immutable snapshot of a remote ticket record
//   - Status: The lifecycle status of a ticket
//   - Credentials: Authentication material for the remote API
//   - MutationPhase: The delete/scrub phase of a bulk mutation
//   - Checkpoint: A durable snapshot of an interrupted enumeration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
