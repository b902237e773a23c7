// Package core provides the foundational domain types and interfaces used by
// Crewmesh. It defines the core abstractions for:
//
//   - Content and ProductDocument artifacts and their status state machines
//   - Pluggable stores for artifact persistence (create/get/update/transition)
//   - Create/update request shapes consumed by outer API layers
//
// The package intentionally keeps implementation concerns (persistence
// backends, orchestration, concrete specialists) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
