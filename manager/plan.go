package manager

import (
	"sync"
	"time"
)

// Step is a single delegation: it names exactly one specialist role and the
// task handed to it. Context is either fixed or derived from earlier results
// via BuildContext.
type Step struct {
	// Key identifies the step's result in Results; defaults to Role.
	Key string
	// Role is the specialist role name, resolved against the registry.
	Role string
	// Task is the natural-language task description.
	Task string
	// Context is the static context string handed to the specialist.
	Context string
	// BuildContext, when set, derives the context from earlier stage results
	// and takes precedence over Context.
	BuildContext func(r *Results) string
}

func (s Step) key() string {
	if s.Key != "" {
		return s.Key
	}
	return s.Role
}

// Stage groups steps declared independent of each other; they may run in
// parallel. Stages execute sequentially, so later stages can consume earlier
// results as context.
type Stage []Step

// Plan is the decomposition of a goal into ordered stages.
type Plan struct {
	Name   string
	Stages []Stage
}

// Steps returns the total number of steps across all stages.
func (p Plan) Steps() int {
	n := 0
	for _, st := range p.Stages {
		n += len(st)
	}
	return n
}

// Results collects specialist outputs keyed by step key. Safe for concurrent
// writes from parallel steps.
type Results struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{values: make(map[string]string)}
}

// Get returns the result for a step key.
func (r *Results) Get(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Set records a step result.
func (r *Results) Set(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// Snapshot returns a copy of all collected results.
func (r *Results) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[string]string, len(r.values))
	for k, v := range r.values {
		cp[k] = v
	}
	return cp
}

// StepReport records the attributable outcome of one delegation step:
// attempt count and final result, retrievable after the run for observability.
type StepReport struct {
	Key      string
	Role     string
	Attempts int
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the step completed without error.
func (r StepReport) Succeeded() bool { return r.Err == nil }
