package core

import "fmt"

// AnalysisError is returned when an email could not be analyzed.
// The parser is never reached on this path.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// newAnalysisError wraps err with a human-readable message
func newAnalysisError(err error) *AnalysisError {
	return &AnalysisError{Message: err.Error(), Err: err}
}
