package specialist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/crewmesh/logging"
)

// Options holds configuration overrides passed to NewPool().
type Options struct {
	// InvocationTimeout bounds each specialist invocation. Zero disables the bound.
	InvocationTimeout time.Duration
	// Logger receives invocation diagnostics.
	Logger logging.Logger
}

// Pool is the registry of specialists keyed by role name. Registration
// happens during startup; afterwards the registry is read-mostly and safe for
// concurrent invocation.
type Pool struct {
	mu          sync.RWMutex
	specialists map[string]Capability
	timeout     time.Duration
	logger      logging.Logger
}

// NewPool constructs an empty Pool with optional overrides.
func NewPool(optFns ...func(o *Options)) *Pool {
	opts := Options{
		InvocationTimeout: 2 * time.Minute,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Pool{
		specialists: make(map[string]Capability),
		timeout:     opts.InvocationTimeout,
		logger:      opts.Logger,
	}
}

// Register binds a capability to a role name. Duplicate registration is a
// configuration error raised at startup, not at call time.
func (p *Pool) Register(role string, c Capability) error {
	if role == "" {
		return fmt.Errorf("specialist role must not be empty")
	}
	if c == nil {
		return fmt.Errorf("capability for role %q must not be nil", role)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.specialists[role]; exists {
		return fmt.Errorf("specialist role %q already registered", role)
	}
	p.specialists[role] = c

	return nil
}

// RegisterFunc binds a plain function to a role name.
func (p *Pool) RegisterFunc(role string, fn CapabilityFunc) error {
	return p.Register(role, fn)
}

// Has reports whether a specialist is registered for the role. It satisfies
// the delegation.Registry interface.
func (p *Pool) Has(role string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.specialists[role]
	return ok
}

// Roles returns the sorted role names currently registered.
func (p *Pool) Roles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	roles := make([]string, 0, len(p.specialists))
	for role := range p.specialists {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Invoke executes the named specialist's capability with a bounded timeout.
// Failures surface as *AgentError: deadline expiry maps to Timeout, anything
// else to ExecutionFailed. Invoke never retries; retry policy belongs to the
// caller.
func (p *Pool) Invoke(ctx context.Context, role, task, taskContext string) (string, error) {
	p.mu.RLock()
	capability, ok := p.specialists[role]
	p.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, role)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := capability.Execute(ctx, task, taskContext)
	if err != nil {
		code := ExecutionFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = Timeout
		}
		p.logger.Warn("specialist.invoke.failed", "role", role, "code", string(code), "error", err.Error())
		return "", &AgentError{Role: role, Code: code, Err: err}
	}

	p.logger.Debug("specialist.invoke.success", "role", role, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
