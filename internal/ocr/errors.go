package ocr

import "fmt"

// AdapterError wraps a failure from a single acquisition adapter so the
// orchestrator can report which strategy failed while treating the attempt
// as "no result".
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError creates an AdapterError.
func NewAdapterError(adapter string, err error) *AdapterError {
	return &AdapterError{Adapter: adapter, Err: err}
}
