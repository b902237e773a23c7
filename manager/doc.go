// Package manager implements the delegation orchestrator. A Manager takes a
// plan decomposed into sequential stages of parallel steps, routes each step
// to a named specialist through the delegation protocol, retries transient
// failures with backoff, and aggregates results for the flow layer to persist.
//
// The manager never touches artifact stores directly: all steps belonging to
// one artifact are joined before the flow performs a store transition, so the
// store never observes a partially-aggregated result.
package manager
