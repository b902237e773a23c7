// Package flow contains the top-level drivers that turn a goal into a
// persisted artifact. Each flow assembles a delegation plan for the manager,
// supplies initial context, and drives the artifact store's state machine to
// a terminal state. Callers receive either a complete artifact or a
// structured failure identifying the failing step and specialist, never a
// partially populated artifact silently marked successful.
package flow
