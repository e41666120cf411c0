// Package compiler drives one bundle build: it owns the lifecycle hooks,
// applies plugins and runs graph construction, chunk assembly and emission.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"bale/internal/chunk"
	"bale/internal/diag"
	"bale/internal/emit"
	"bale/internal/fsys"
	"bale/internal/graph"
	"bale/internal/hooks"
	"bale/internal/loader"
	"bale/internal/project"
	"bale/internal/resolve"
	"bale/internal/trace"
)

// Plugin taps compiler hooks. Apply is called exactly once, from New.
type Plugin interface {
	Apply(c *Compiler)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(c *Compiler)

func (f PluginFunc) Apply(c *Compiler) { f(c) }

// Options configure a Compiler.
type Options struct {
	// Root is the project root; module ids are relative to it.
	Root    string
	Entries []graph.Entry
	Rules   []loader.Rule
	// Extensions tried in order when a specifier has no exact match.
	Extensions []string
	Callee     string

	// OutputPath is the output directory, absolute or relative to Root.
	OutputPath string
	Filename   string
	Banner     string

	Jobs    int
	Cache   graph.Cache
	FS      fsys.FS
	Plugins []Plugin
	Logger  *log.Logger

	ModuleObserver graph.Observer
	PhaseObserver  PhaseObserver
}

// Compiler holds static configuration and hooks; every Run produces a new
// Compilation.
type Compiler struct {
	opts     Options
	hooks    *hooks.Registry
	log      *log.Logger
	pipeline *loader.Pipeline
	resolver *resolve.Resolver
	emitter  *emit.Emitter
	outDir   string

	mu      sync.Mutex
	current *Compilation
	running bool
}

// New validates options and applies plugins in order.
func New(opts Options) (*Compiler, error) {
	if opts.Root == "" {
		return nil, errors.New("project root is required")
	}
	opts.Root = path.Clean(project.ToUnixPath(opts.Root))
	if err := validateEntries(opts.Entries); err != nil {
		return nil, err
	}
	if opts.FS == nil {
		opts.FS = fsys.OS()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "dist"
	}

	pipeline, err := loader.NewPipeline(opts.Root, opts.Rules)
	if err != nil {
		return nil, err
	}
	outDir := project.Join(opts.Root, opts.OutputPath)
	emitter, err := emit.New(opts.FS, outDir, opts.Filename)
	if err != nil {
		return nil, err
	}

	c := &Compiler{
		opts:     opts,
		hooks:    hooks.NewRegistry(hooks.Run, hooks.Done),
		log:      opts.Logger,
		pipeline: pipeline,
		resolver: resolve.New(opts.FS, resolve.Options{Extensions: opts.Extensions}),
		emitter:  emitter,
		outDir:   outDir,
	}
	for _, p := range opts.Plugins {
		p.Apply(c)
	}
	for _, name := range c.hooks.Names() {
		c.log.Debug("hook ready", "hook", name, "taps", c.hooks.Hook(name).Len())
	}
	return c, nil
}

func validateEntries(entries []graph.Entry) error {
	if len(entries) == 0 {
		return errors.New("no entry configured")
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entry %q has no name", e.Request)
		}
		if e.Request == "" {
			return fmt.Errorf("entry %q has no path", e.Name)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("duplicate entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// Hooks returns the hook registry plugins tap.
func (c *Compiler) Hooks() *hooks.Registry { return c.hooks }

// Logger returns the compiler logger.
func (c *Compiler) Logger() *log.Logger { return c.log }

// FS returns the filesystem the compiler reads and writes.
func (c *Compiler) FS() fsys.FS { return c.opts.FS }

// Root returns the project root.
func (c *Compiler) Root() string { return c.opts.Root }

// OutputDir returns the absolute output directory.
func (c *Compiler) OutputDir() string { return c.outDir }

// Current returns the compilation of the run in progress, or of the last
// run once it finished.
func (c *Compiler) Current() *Compilation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Run performs one build. It fires "run" before the graph is built and
// "done" after every chunk has been written. A failed build never fires
// "done"; the returned error is a *BuildError.
func (c *Compiler) Run(ctx context.Context) (*Compilation, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, errors.New("compiler is already running")
	}
	c.running = true
	comp := newCompilation()
	c.current = comp
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	ctx, span := trace.Start(ctx, trace.ScopeBuild, "build")
	span.WithExtra("id", comp.ID.String())
	defer func() { comp.Duration = span.End("") }()

	if err := c.phase(PhaseRun, func() error { return c.hooks.Call(hooks.Run) }); err != nil {
		return comp, &BuildError{Phase: PhaseRun, Err: err}
	}

	builder := graph.NewBuilder(graph.Options{
		Root:     c.opts.Root,
		FS:       c.opts.FS,
		Resolver: c.resolver,
		Loaders:  c.pipeline,
		Callee:   c.opts.Callee,
		Jobs:     c.opts.Jobs,
		Cache:    c.opts.Cache,
		Observer: c.opts.ModuleObserver,
		Reporter: diag.BagReporter{Bag: comp.Warnings},
		Logger:   c.log,
	})
	err := c.phase(PhaseGraph, func() error {
		g, err := builder.Build(ctx, c.opts.Entries)
		comp.Graph = g
		return err
	})
	if err != nil {
		return comp, c.graphError(ctx, err)
	}
	c.checkEntries(comp)

	err = c.phase(PhaseAssemble, func() error {
		_, span := trace.Start(ctx, trace.ScopePhase, "assemble")
		defer span.End("")
		chunks, err := chunk.Assemble(comp.Graph, chunk.Options{Banner: c.opts.Banner})
		comp.Chunks = chunks
		return err
	})
	if err != nil {
		return comp, &BuildError{Phase: PhaseAssemble, Err: err}
	}

	err = c.phase(PhaseEmit, func() error {
		assets, err := c.emitter.EmitAll(ctx, comp.Chunks)
		comp.Assets = assets
		return err
	})
	if err != nil {
		return comp, &BuildError{Phase: PhaseEmit, Err: err}
	}

	if err := c.phase(PhaseDone, func() error { return c.hooks.Call(hooks.Done) }); err != nil {
		return comp, &BuildError{Phase: PhaseDone, Err: err}
	}
	span.WithExtra("modules", strconv.Itoa(comp.Graph.Len()))
	return comp, nil
}

func (c *Compiler) phase(name string, fn func() error) error {
	c.notify(PhaseEvent{Name: name, Status: PhaseStart})
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	c.notify(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	c.log.Debug("phase finished", "phase", name, "elapsed", elapsed, "err", err)
	return err
}

func (c *Compiler) notify(ev PhaseEvent) {
	if c.opts.PhaseObserver != nil {
		c.opts.PhaseObserver(ev)
	}
}

func (c *Compiler) graphError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return &BuildError{Phase: PhaseGraph, Err: fmt.Errorf("%w: %w", ErrAborted, ctxErr)}
	}
	var merr *graph.ModuleError
	if errors.As(err, &merr) {
		return &BuildError{ModuleID: merr.ModuleID, Phase: string(merr.Phase), Err: merr.Err}
	}
	return &BuildError{Phase: PhaseGraph, Err: err}
}

// checkEntries warns about entries that share a module; each still gets its
// own chunk.
func (c *Compiler) checkEntries(comp *Compilation) {
	byID := make(map[string]string)
	for _, e := range comp.Graph.Entries {
		if other, ok := byID[e.ID]; ok {
			comp.Warnings.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.GraphDuplicateTarget,
				Module:   e.ID,
				Message:  fmt.Sprintf("entries %q and %q start from the same module", other, e.Name),
			})
			continue
		}
		byID[e.ID] = e.Name
		if m, ok := comp.Graph.Module(e.ID); ok && strings.TrimSpace(m.Source) == "" {
			comp.Warnings.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.OutputEmptyChunk,
				Module:   e.ID,
				Message:  fmt.Sprintf("entry %q is empty", e.Name),
			})
		}
	}
}
