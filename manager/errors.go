package manager

import "fmt"

// OrchestrationErrorCode categorizes top-level orchestration failures.
type OrchestrationErrorCode string

const (
	// StepFailed indicates a required delegation step failed unrecoverably.
	StepFailed OrchestrationErrorCode = "step_failed"
	// PartialAggregation indicates specialist outputs could not be assembled
	// into a complete artifact even though no single step reported failure.
	PartialAggregation OrchestrationErrorCode = "partial_aggregation"
)

// OrchestrationError is the top-level result returned to the flow runner when
// the overall goal cannot be completed. It carries enough detail to identify
// which delegation failed.
type OrchestrationError struct {
	Code  OrchestrationErrorCode
	Role  string
	Cause error
}

func (e *OrchestrationError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("orchestration error [%s]: delegation to %s failed: %v", e.Code, e.Role, e.Cause)
	}
	return fmt.Sprintf("orchestration error [%s]: %v", e.Code, e.Cause)
}

func (e *OrchestrationError) Unwrap() error { return e.Cause }

// NewStepFailed wraps a step failure for the named role.
func NewStepFailed(role string, cause error) *OrchestrationError {
	return &OrchestrationError{Code: StepFailed, Role: role, Cause: cause}
}

// NewPartialAggregation reports an incomplete aggregation.
func NewPartialAggregation(cause error) *OrchestrationError {
	return &OrchestrationError{Code: PartialAggregation, Cause: cause}
}
