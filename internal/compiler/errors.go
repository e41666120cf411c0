package compiler

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the caller cancels a build.
var ErrAborted = errors.New("build aborted")

// BuildError is the tagged failure of a Run.
type BuildError struct {
	ModuleID string // empty for failures outside a module
	Phase    string
	Err      error
}

func (e *BuildError) Error() string {
	if e.ModuleID != "" {
		return fmt.Sprintf("build failed (%s %s): %v", e.Phase, e.ModuleID, e.Err)
	}
	return fmt.Sprintf("build failed (%s): %v", e.Phase, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
