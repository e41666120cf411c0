package buildpipeline

import "time"

// Stage describes a pipeline phase or a module build step.
type Stage string

const (
	StageRun      Stage = "run"
	StageGraph    Stage = "graph"
	StageAssemble Stage = "assemble"
	StageEmit     Stage = "emit"
	StageDone     Stage = "done"

	// per module
	StageLoad      Stage = "load"
	StageTransform Stage = "transform"
	StageParse     Stage = "parse"
	StageResolve   Stage = "resolve"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a module (or for the overall pipeline when
// File is empty). File is the module id.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Cached  bool
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}

// PipelineStages lists the phase stages in execution order.
func PipelineStages() []Stage {
	return []Stage{StageRun, StageGraph, StageAssemble, StageEmit, StageDone}
}
