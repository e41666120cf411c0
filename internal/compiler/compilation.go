package compiler

import (
	"time"

	"github.com/google/uuid"

	"bale/internal/chunk"
	"bale/internal/diag"
	"bale/internal/emit"
	"bale/internal/graph"
)

// Compilation is the result of one Run.
type Compilation struct {
	ID       uuid.UUID
	Started  time.Time
	Duration time.Duration

	Graph    *graph.Graph
	Chunks   []*chunk.Chunk
	Assets   []emit.Asset
	Warnings *diag.Bag
}

func newCompilation() *Compilation {
	return &Compilation{
		ID:       uuid.New(),
		Started:  time.Now(),
		Warnings: diag.NewBag(0),
	}
}

// Modules returns every module sorted by id, nil before the graph is built.
func (c *Compilation) Modules() []*graph.Module {
	if c == nil || c.Graph == nil {
		return nil
	}
	return c.Graph.Modules()
}

// FileDependencies lists every file the build read; watch mode observes
// exactly these.
func (c *Compilation) FileDependencies() []string {
	if c == nil || c.Graph == nil {
		return nil
	}
	return c.Graph.FileDependencies()
}

// Asset returns the emitted file of chunk name.
func (c *Compilation) Asset(name string) (emit.Asset, bool) {
	for _, a := range c.Assets {
		if a.Chunk == name {
			return a, true
		}
	}
	return emit.Asset{}, false
}

// CachedModules counts modules whose loader output came from the cache.
func (c *Compilation) CachedModules() int {
	n := 0
	for _, m := range c.Modules() {
		if m.Cached {
			n++
		}
	}
	return n
}
