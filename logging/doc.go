// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer CrewLogger with contextual
// helpers (run, flow, component) and domain specific logging helpers for
// delegations, flow executions and artifact state transitions.
package logging
