package app

type RescheduleErrorCode string

const (
	ErrValidation  RescheduleErrorCode = "VALIDATION"
	ErrComputation RescheduleErrorCode = "COMPUTATION"
	ErrConflict    RescheduleErrorCode = "CONFLICT"
	ErrNotFound    RescheduleErrorCode = "NOT_FOUND"
)

// RescheduleError is the error shape the CLI renders for reschedule and
// generation use cases.
type RescheduleError struct {
	Code    RescheduleErrorCode
	Message string
	Err     error
}

func (e *RescheduleError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *RescheduleError) Unwrap() error {
	return e.Err
}
