// Package store provides artifact persistence implementations. The in-memory
// store suits tests, examples and single-process prototypes; the sqlite
// sub-package provides a durable embedded backend. Both serialize writes per
// artifact id so state transitions for a single artifact are totally ordered.
package store
