// Package specialist implements the pool of named, role-bound workers the
// manager delegates to. Each specialist exposes a single capability: accept a
// task description plus context and return a result or a typed failure.
//
// The pool is a registry mapping role identifiers to a uniform invocation
// interface. Registration happens at startup and enforces role uniqueness;
// invocation carries a bounded timeout and never retries internally (retry
// policy belongs to the manager).
package specialist
