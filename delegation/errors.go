package delegation

import "fmt"

// ProtocolErrorCode categorizes structured-call protocol failures.
type ProtocolErrorCode string

const (
	// InvalidRole indicates an empty or malformed coworker identifier.
	InvalidRole ProtocolErrorCode = "invalid_role"
	// SchemaViolation indicates a payload that is not exactly the closed
	// three-key mapping with string values.
	SchemaViolation ProtocolErrorCode = "schema_violation"
	// UnknownCoworker indicates a coworker that resolves to no registered specialist.
	UnknownCoworker ProtocolErrorCode = "unknown_coworker"
)

// ProtocolError reports a delegation message that failed validation or
// routing. Protocol errors are never retried with the same payload: a
// malformed structured call from a planner is a content problem, not a
// transient fault.
type ProtocolError struct {
	Code   ProtocolErrorCode
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error [%s]: %s", e.Code, e.Detail)
}

func newProtocolError(code ProtocolErrorCode, format string, args ...any) *ProtocolError {
	return &ProtocolError{Code: code, Detail: fmt.Sprintf(format, args...)}
}
