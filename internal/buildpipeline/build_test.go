package buildpipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bale/internal/compiler"
	"bale/internal/fsys"
	"bale/internal/graph"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) module(id string, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.File == id && evt.Status == status {
			n++
		}
	}
	return n
}

func options(files map[string]string) compiler.Options {
	return compiler.Options{
		Root:    "/proj",
		Entries: []graph.Entry{{Name: "main", Request: "./src/index.js"}},
		FS:      fsys.NewMockFS(files),
	}
}

func TestBuildReportsProgressAndTimings(t *testing.T) {
	rec := &recorder{}
	res, err := Build(context.Background(), &BuildRequest{
		Options: options(map[string]string{
			"/proj/src/index.js": `require("./a");`,
			"/proj/src/a.js":     `module.exports = 1;`,
		}),
		Progress: rec,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Compilation == nil || len(res.Compilation.Assets) != 1 {
		t.Fatalf("compilation = %+v", res.Compilation)
	}
	for _, id := range []string{"./src/index.js", "./src/a.js"} {
		if rec.module(id, StatusQueued) != 1 {
			t.Errorf("%s: expected one queued event", id)
		}
		if rec.module(id, StatusDone) == 0 {
			t.Errorf("%s: no done event", id)
		}
	}
	for _, stage := range []Stage{StageGraph, StageAssemble, StageEmit} {
		if !res.Timings.Has(stage) {
			t.Errorf("missing timing for %s", stage)
		}
	}
}

func TestBuildFailureMarksModule(t *testing.T) {
	rec := &recorder{}
	_, err := Build(context.Background(), &BuildRequest{
		Options: options(map[string]string{
			"/proj/src/index.js": `require("./missing");`,
		}),
		Progress: rec,
	})
	var be *compiler.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v", err)
	}
	if rec.module("./src/index.js", StatusError) == 0 {
		t.Fatal("expected an error event for the importer")
	}
	var graphFailed bool
	for _, evt := range rec.events {
		if evt.File == "" && evt.Stage == StageGraph && evt.Status == StatusError {
			graphFailed = true
		}
	}
	if !graphFailed {
		t.Fatal("graph stage not reported as failed")
	}
}

func TestPipelineKeepsUserObservers(t *testing.T) {
	var phases []string
	opts := options(map[string]string{"/proj/src/index.js": `module.exports = 1;`})
	opts.PhaseObserver = func(ev compiler.PhaseEvent) {
		if ev.Status == compiler.PhaseEnd {
			phases = append(phases, ev.Name)
		}
	}
	p, err := New(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		res, err := p.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !res.Timings.Has(StageEmit) {
			t.Fatal("timings not recorded")
		}
	}
	if len(phases) < 2 || phases[0] != compiler.PhaseRun {
		t.Fatalf("phases = %v", phases)
	}
}

func TestTimingsNilSafe(t *testing.T) {
	var tm *Timings
	tm.Set(StageGraph, 1)
	var zero Timings
	if zero.Has(StageGraph) || zero.Sum(StageGraph) != 0 {
		t.Fatal("zero timings should be empty")
	}
}
