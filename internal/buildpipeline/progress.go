package buildpipeline

import (
	"sync"

	"bale/internal/compiler"
	"bale/internal/graph"
)

// progressBridge turns compiler and graph observer callbacks into Events
// and records phase timings.
type progressBridge struct {
	sink ProgressSink

	mu      sync.Mutex
	timings Timings
}

func (p *progressBridge) reset() {
	p.mu.Lock()
	p.timings = Timings{}
	p.mu.Unlock()
}

func (p *progressBridge) snapshot() Timings {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := Timings{}
	for stage, dur := range p.timings.stages {
		out.Set(stage, dur)
	}
	return out
}

func (p *progressBridge) onPhase(ev compiler.PhaseEvent) {
	stage := Stage(ev.Name)
	if ev.Status == compiler.PhaseEnd {
		p.mu.Lock()
		p.timings.Set(stage, ev.Elapsed)
		p.mu.Unlock()
	}
	if p.sink == nil {
		return
	}
	status := StatusWorking
	if ev.Status == compiler.PhaseEnd {
		status = StatusDone
		if ev.Err != nil {
			status = StatusError
		}
	}
	p.sink.OnEvent(Event{Stage: stage, Status: status, Err: ev.Err, Elapsed: ev.Elapsed})
}

func (p *progressBridge) onModule(ev graph.Progress) {
	if p.sink == nil {
		return
	}
	stage := moduleStage(ev.Phase)
	var status Status
	switch ev.Status {
	case graph.StatusQueued:
		status = StatusQueued
	case graph.StatusWorking:
		status = StatusWorking
	case graph.StatusDone:
		status = StatusDone
	default:
		status = StatusError
	}
	p.sink.OnEvent(Event{
		File:    ev.ModuleID,
		Stage:   stage,
		Status:  status,
		Err:     ev.Err,
		Cached:  ev.Cached,
		Elapsed: ev.Elapsed,
	})
}

func moduleStage(phase graph.Phase) Stage {
	switch phase {
	case graph.PhaseTransform:
		return StageTransform
	case graph.PhaseParse:
		return StageParse
	case graph.PhaseResolve:
		return StageResolve
	default:
		return StageLoad
	}
}
