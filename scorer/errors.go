package scorer

import "fmt"

// ComputationError indicates that both the batch scoring path and its
// single-pair fallback failed. The batch failure that triggered the
// fallback is preserved as BatchCause; the fallback's own failure is the
// wrapped cause.
type ComputationError struct {
	Op         string
	BatchCause error
	cause      error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s failed after batch fallback: %v (batch failure: %v)", e.Op, e.cause, e.BatchCause)
}

func (e *ComputationError) Unwrap() error { return e.cause }
