package core

import "fmt"

// ErrNotFound is returned by stores when no artifact exists for the given id.
var ErrNotFound = fmt.Errorf("artifact not found")

// StateError reports an artifact state transition that violates the state
// machine preconditions. It indicates a programming or ordering bug and is
// surfaced to the caller rather than retried.
type StateError struct {
	Entity string // "content" or "product_document"
	ID     string
	From   string
	To     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid transition for %s %s: %s -> %s", e.Entity, e.ID, e.From, e.To)
}

// NewStateError creates a StateError for the given entity and transition.
func NewStateError(entity, id, from, to string) *StateError {
	return &StateError{Entity: entity, ID: id, From: from, To: to}
}
