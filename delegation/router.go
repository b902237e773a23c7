package delegation

// Registry resolves coworker role names against the set of registered
// specialists. The specialist pool satisfies this interface.
type Registry interface {
	Has(role string) bool
}

// Router resolves decoded messages against a specialist registry. It performs
// no invocation itself; routing failures surface before any specialist runs.
type Router struct {
	registry Registry
}

// NewRouter creates a Router backed by the given registry.
func NewRouter(registry Registry) *Router {
	return &Router{registry: registry}
}

// Route verifies that the message's coworker resolves to a registered
// specialist, returning UnknownCoworker otherwise.
func (r *Router) Route(m Message) error {
	if !r.registry.Has(m.Coworker) {
		return newProtocolError(UnknownCoworker, "no specialist registered for role %q", m.Coworker)
	}
	return nil
}
