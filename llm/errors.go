package llm

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two recoverable failure classes the orchestrator
// distinguishes. Anything else surfaces as a *BackendError.
var (
	ErrTimeout     = errors.New("llm: request timed out")
	ErrUnavailable = errors.New("llm: backend unavailable")
)

// BackendError is a non-transport failure reported by the backend itself.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm: backend error [%d]: %s", e.StatusCode, e.Message)
}
