package newsthreads

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when documents or clustering parameters violate
// the caller contract: mismatched embedding dimensions, empty embeddings, or
// out-of-range parameters.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ModelError wraps a failure of the embedding model. It is propagated as is;
// nothing in this package retries it.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
