package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/crewmesh/specialist"
)

// Compile-time check.
var _ specialist.Capability = (*ScriptedCapability)(nil)

// ScriptedCapability is a deterministic specialist for tests. It returns a
// fixed output, optionally failing the first FailFirst invocations, and
// counts how often it was executed.
type ScriptedCapability struct {
	mu sync.Mutex

	// Output is returned on success.
	Output string
	// Err is returned while failures remain. Defaults to a generic error.
	Err error
	// FailFirst fails this many invocations before succeeding. Negative
	// values fail forever.
	FailFirst int

	calls int
}

// NewScriptedCapability returns a capability that always succeeds with output.
func NewScriptedCapability(output string) *ScriptedCapability {
	return &ScriptedCapability{Output: output}
}

// NewFailingCapability returns a capability that fails failFirst times before
// succeeding with output. Pass a negative failFirst to fail forever.
func NewFailingCapability(output string, failFirst int, err error) *ScriptedCapability {
	return &ScriptedCapability{Output: output, FailFirst: failFirst, Err: err}
}

// Execute implements specialist.Capability.
func (c *ScriptedCapability) Execute(_ context.Context, _, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.FailFirst < 0 || c.calls <= c.FailFirst {
		if c.Err != nil {
			return "", c.Err
		}
		return "", fmt.Errorf("scripted failure on call %d", c.calls)
	}
	return c.Output, nil
}

// Calls returns the number of times Execute ran.
func (c *ScriptedCapability) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// BlockingCapability blocks until its context is cancelled, for timeout tests.
type BlockingCapability struct{}

// Execute implements specialist.Capability.
func (BlockingCapability) Execute(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
