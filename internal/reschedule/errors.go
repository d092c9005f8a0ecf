package reschedule

import "fmt"

// ValidationError reports malformed or inconsistent input. It is returned
// before any computation and is safe to show verbatim.
type ValidationError struct {
	Reason    string
	ContentID string
}

func (e *ValidationError) Error() string {
	if e.Reason == reasonInvalidContent {
		return fmt.Sprintf("%s: %s", e.Reason, e.ContentID)
	}
	return e.Reason
}

const (
	reasonNoAdjustments  = "no adjustments"
	reasonNoContents     = "no contents"
	reasonInvalidContent = "invalid content id"
	reasonInvalidPeriod  = "invalid period"
	reasonInvalidChange  = "invalid adjustment"
	reasonInvalidBlocks  = "invalid block definitions"
)

// ComputationError reports an invariant violation during generation. It is
// fatal for the request and indicates a bug.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("reschedule %s failed: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
