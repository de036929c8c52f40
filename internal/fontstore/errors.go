package fontstore

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by operations that need hydration to have finished.
var ErrNotReady = errors.New("fontstore: store is still hydrating")

// PersistenceError reports a failed load or write against the backend.
type PersistenceError struct {
	Op       string
	Document string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %q: %v", e.Op, e.Document, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
