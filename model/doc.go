// Package model defines the minimal interface specialists use to drive text
// generation, plus a deterministic mock for tests. Provider adapters live in
// the openai and anthropic sub-packages.
package model
