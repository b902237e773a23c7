package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for artifacts and runs.
func NewID() string { return uuid.NewString() }
