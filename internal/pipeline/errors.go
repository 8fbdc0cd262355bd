package pipeline

import (
	"errors"
	"fmt"
)

// ErrInputMissing is returned when a run is started without a document.
var ErrInputMissing = errors.New("no resume document provided")

// RunError records the state a run was in when it failed.
type RunError struct {
	RunID string
	Stage State
	Err   error
}

func (e *RunError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("run %s: %s failed: %v", e.RunID, e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
