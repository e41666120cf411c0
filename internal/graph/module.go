// Package graph builds the module dependency graph of a bundle: modules are
// discovered from entries, transformed, parsed, rewritten to reference each
// other by id and stored in an id-keyed arena.
package graph

import (
	"slices"
	"sort"
)

// Dependency is one resolved require site of a module.
type Dependency struct {
	Specifier  string
	ResolvedID string
}

// Module is one source file after loaders and specifier rewriting.
type Module struct {
	ID   string
	Path string // absolute, forward slashes

	// ChunkNames holds every entry chunk this module is reachable from.
	ChunkNames map[string]struct{}
	// Dependencies in extraction order; duplicates are kept.
	Dependencies []Dependency
	// Source is the final text: loaders applied, specifiers replaced by ids.
	Source string
	// Cached is set when the loader output came from the cache.
	Cached bool
}

// InChunk reports whether the module belongs to chunk name.
func (m *Module) InChunk(name string) bool {
	_, ok := m.ChunkNames[name]
	return ok
}

// Chunks returns chunk names in sorted order.
func (m *Module) Chunks() []string {
	out := make([]string, 0, len(m.ChunkNames))
	for name := range m.ChunkNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DependencyIDs returns resolved ids without duplicates, first occurrence first.
func (m *Module) DependencyIDs() []string {
	out := make([]string, 0, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if !slices.Contains(out, dep.ResolvedID) {
			out = append(out, dep.ResolvedID)
		}
	}
	return out
}

// Entry is a named starting point of one chunk.
type Entry struct {
	Name string
	// Request is the configured path, relative to the project root or absolute.
	Request string
	// Path and ID are filled in once the entry is resolved.
	Path string
	ID   string
}

// Graph is the arena of every module reachable from the entries.
type Graph struct {
	Root    string
	Entries []Entry

	modules  map[string]*Module
	order    map[string][]string // chunk name -> module ids, entry first
	fileDeps []string
}

// Module returns the module with the given id.
func (g *Graph) Module(id string) (*Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Len returns the number of modules.
func (g *Graph) Len() int { return len(g.modules) }

// IDs returns every module id, sorted.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Modules returns every module sorted by id.
func (g *Graph) Modules() []*Module {
	ids := g.IDs()
	out := make([]*Module, len(ids))
	for i, id := range ids {
		out[i] = g.modules[id]
	}
	return out
}

// ChunkOrder returns the module ids of chunk name: depth-first preorder from
// the entry, following dependencies in extraction order.
func (g *Graph) ChunkOrder(name string) []string {
	return append([]string(nil), g.order[name]...)
}

// Entry returns the entry called name.
func (g *Graph) Entry(name string) (Entry, bool) {
	for _, e := range g.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FileDependencies returns every absolute path the build read, sorted.
func (g *Graph) FileDependencies() []string {
	return append([]string(nil), g.fileDeps...)
}
