package graph

import "fmt"

// Phase names the module build step that failed.
type Phase string

const (
	PhaseResolve   Phase = "resolve"
	PhaseLoad      Phase = "load"
	PhaseTransform Phase = "transform"
	PhaseParse     Phase = "parse"
)

// ModuleError tags a module build failure with its module id.
type ModuleError struct {
	ModuleID string // empty when an entry itself does not resolve
	Phase    Phase
	Err      error
}

func (e *ModuleError) Error() string {
	if e.ModuleID == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Phase, e.ModuleID, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }
