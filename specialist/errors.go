package specialist

import "fmt"

// ErrUnknownRole is returned when an invocation names a role that was never
// registered. Plans route through the delegation codec first, so hitting this
// from a flow indicates a wiring bug rather than planner output.
var ErrUnknownRole = fmt.Errorf("no specialist registered for role")

// AgentErrorCode categorizes specialist execution failures.
type AgentErrorCode string

const (
	// ExecutionFailed indicates the capability returned an error.
	ExecutionFailed AgentErrorCode = "execution_failed"
	// Timeout indicates the invocation exceeded its bounded timeout. For
	// retry purposes it is not distinguished from other execution failures.
	Timeout AgentErrorCode = "timeout"
)

// AgentError reports a failed specialist invocation. Agent errors are
// retryable at the manager's discretion up to a configured attempt limit.
type AgentError struct {
	Role string
	Code AgentErrorCode
	Err  error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent error [%s] in %s: %v", e.Code, e.Role, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }
