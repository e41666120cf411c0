package compiler

import "time"

// Phase names reported to a PhaseObserver.
const (
	PhaseRun      = "run"
	PhaseGraph    = "graph"
	PhaseAssemble = "assemble"
	PhaseEmit     = "emit"
	PhaseDone     = "done"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events on the goroutine calling Run.
type PhaseObserver func(PhaseEvent)
