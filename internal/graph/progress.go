package graph

import "time"

// Status of one module build.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Progress reports a module build step. Events for one module arrive in
// order; events for different modules interleave.
type Progress struct {
	ModuleID string
	Path     string
	Phase    Phase
	Status   Status
	Err      error
	Cached   bool
	Elapsed  time.Duration
}

// Observer receives progress from worker goroutines and must be
// goroutine-safe.
type Observer func(Progress)
