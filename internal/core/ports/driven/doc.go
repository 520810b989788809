// Package driven defines the driven ports (secondary ports) for zenpurge.
//
// Driven ports are interfaces the core services depend on and that
// adapters implement: the remote ticket connector and the checkpoint
// store. Services hold these interfaces, never concrete adapters, so the
// remote API and the persistence layer stay swappable in tests.
package driven
