// Package buildpipeline wires a compiler to progress reporting and phase
// timings, for one-shot builds and for repeated watch-mode builds.
package buildpipeline

import (
	"context"
	"errors"

	"bale/internal/compiler"
	"bale/internal/graph"
)

// BuildRequest configures one build.
type BuildRequest struct {
	Options  compiler.Options
	Progress ProgressSink
}

// BuildResult captures the compilation and stage timings.
type BuildResult struct {
	Compilation *compiler.Compilation
	Timings     Timings
}

// Pipeline keeps one compiler across runs so plugins are applied once.
type Pipeline struct {
	compiler *compiler.Compiler
	bridge   *progressBridge
}

// New creates the compiler with progress observers attached. Observers
// already present in opts keep receiving events.
func New(opts compiler.Options, progress ProgressSink) (*Pipeline, error) {
	bridge := &progressBridge{sink: progress}
	userPhase, userModule := opts.PhaseObserver, opts.ModuleObserver
	opts.PhaseObserver = func(ev compiler.PhaseEvent) {
		bridge.onPhase(ev)
		if userPhase != nil {
			userPhase(ev)
		}
	}
	opts.ModuleObserver = func(ev graph.Progress) {
		bridge.onModule(ev)
		if userModule != nil {
			userModule(ev)
		}
	}
	c, err := compiler.New(opts)
	if err != nil {
		return nil, err
	}
	return &Pipeline{compiler: c, bridge: bridge}, nil
}

// Compiler exposes the underlying compiler.
func (p *Pipeline) Compiler() *compiler.Compiler { return p.compiler }

// Run performs one build.
func (p *Pipeline) Run(ctx context.Context) (BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.bridge.reset()
	comp, err := p.compiler.Run(ctx)
	return BuildResult{Compilation: comp, Timings: p.bridge.snapshot()}, err
}

// Build compiles once.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	if req == nil {
		return BuildResult{}, errors.New("missing build request")
	}
	p, err := New(req.Options, req.Progress)
	if err != nil {
		return BuildResult{}, err
	}
	return p.Run(ctx)
}
