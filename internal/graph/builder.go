package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"bale/internal/diag"
	"bale/internal/fsys"
	"bale/internal/jsast"
	"bale/internal/project"
	"bale/internal/resolve"
	"bale/internal/trace"
)

// Resolver maps a specifier to an existing absolute path.
type Resolver interface {
	Resolve(baseDir, specifier string) (string, error)
}

// Transformer runs the loader chain configured for a path.
type Transformer interface {
	Apply(path, source string) (string, error)
	// Signature names the chain for path; "" means it cannot be cached.
	Signature(path string) string
}

// Cache stores loader output keyed by a digest of its inputs.
type Cache interface {
	Get(key project.Digest) (string, bool, error)
	Put(key project.Digest, source string) error
}

// Options configure a Builder.
type Options struct {
	Root     string
	FS       fsys.FS
	Resolver Resolver    // nil: resolve.New(FS) with default extensions
	Loaders  Transformer // nil: sources pass through untouched
	Callee   string      // dependency-declaration identifier, default "require"
	Jobs     int         // concurrent module builds, default GOMAXPROCS
	Cache    Cache
	Observer Observer
	Reporter diag.Reporter
	Logger   *log.Logger
}

// Builder turns entries into a Graph.
type Builder struct {
	opts Options
	log  *log.Logger
}

// NewBuilder fills option defaults.
func NewBuilder(opts Options) *Builder {
	if opts.FS == nil {
		opts.FS = fsys.OS()
	}
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(opts.FS, resolve.Options{})
	}
	if opts.Callee == "" {
		opts.Callee = jsast.DefaultCallee
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	opts.Root = path.Clean(project.ToUnixPath(opts.Root))
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{opts: opts, log: logger}
}

// buildContext is shared by every module build of one Build call.
type buildContext struct {
	ctx   context.Context
	group *errgroup.Group
	sem   *semaphore.Weighted

	mu       sync.Mutex
	modules  map[string]*Module
	issuers  map[string]string // id -> id of the first requirer, "" for entries
	fileDeps map[string]struct{}
	// NFC spelling -> first id claimed with it
	spellings map[string]string
	clashes   []spellingClash
}

type spellingClash struct {
	first, second string
}

// claim registers id before any work is done on it. Only the first
// claimant gets true and builds the module.
func (bc *buildContext) claim(id, issuer string) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if _, ok := bc.modules[id]; ok {
		return false
	}
	bc.modules[id] = &Module{ID: id, ChunkNames: make(map[string]struct{})}
	bc.issuers[id] = issuer
	key := project.SpellingKey(id)
	if first, ok := bc.spellings[key]; ok {
		// order the pair so the report does not depend on scheduling
		bc.clashes = append(bc.clashes, spellingClash{first: min(first, id), second: max(first, id)})
	} else {
		bc.spellings[key] = id
	}
	return true
}

func (bc *buildContext) addFileDep(p string) {
	bc.mu.Lock()
	bc.fileDeps[p] = struct{}{}
	bc.mu.Unlock()
}

func (bc *buildContext) store(m *Module) {
	bc.mu.Lock()
	bc.modules[m.ID] = m
	bc.mu.Unlock()
}

// chain lists ids from the entry down to id along first-requirer links.
func (bc *buildContext) chain(id string) []string {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	var rev []string
	for cur, guard := id, 0; cur != "" && guard <= len(bc.issuers); guard++ {
		rev = append(rev, cur)
		cur = bc.issuers[cur]
	}
	out := make([]string, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// Build resolves entries, builds every reachable module and returns the
// finished graph. Entries are processed in the given order; their names must
// be unique.
func (b *Builder) Build(ctx context.Context, entries []Entry) (*Graph, error) {
	if len(entries) == 0 {
		return nil, errors.New("no entries configured")
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "graph")
	defer span.End("")

	resolved := make([]Entry, len(entries))
	for i, e := range entries {
		p, err := b.opts.Resolver.Resolve(b.opts.Root, e.Request)
		if err != nil {
			return nil, &ModuleError{Phase: PhaseResolve, Err: err}
		}
		e.Path = p
		e.ID = project.ModuleID(b.opts.Root, p)
		resolved[i] = e
	}

	g, gctx := errgroup.WithContext(ctx)
	bc := &buildContext{
		ctx:       gctx,
		group:     g,
		sem:       semaphore.NewWeighted(int64(b.opts.Jobs)),
		modules:   make(map[string]*Module),
		issuers:   make(map[string]string),
		fileDeps:  make(map[string]struct{}),
		spellings: make(map[string]string),
	}
	for _, e := range resolved {
		bc.addFileDep(e.Path)
		b.visit(bc, e.ID, e.Path, "")
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a cancellation that raced the last module still aborts the build
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := &Graph{
		Root:     b.opts.Root,
		Entries:  resolved,
		modules:  bc.modules,
		fileDeps: sortedKeys(bc.fileDeps),
	}
	graph.assignChunks()
	reportCycles(graph, b.opts.Reporter)
	reportSpellingClashes(bc.clashes, b.opts.Reporter)
	span.WithExtra("modules", strconv.Itoa(graph.Len()))
	b.log.Debug("graph built", "modules", graph.Len(), "files", len(graph.fileDeps))
	return graph, nil
}

// visit claims id and, for the first claimant, schedules its build.
// Children of one module are dispatched concurrently; errgroup.Wait is the
// join barrier for the whole wavefront.
func (b *Builder) visit(bc *buildContext, id, absPath, issuer string) {
	if !bc.claim(id, issuer) {
		return
	}
	b.notify(Progress{ModuleID: id, Path: absPath, Status: StatusQueued})
	bc.group.Go(func() error {
		// отмена проверяется между модулями; начатый модуль доводится до конца
		if err := bc.ctx.Err(); err != nil {
			return err
		}
		if err := bc.sem.Acquire(bc.ctx, 1); err != nil {
			return err
		}
		mod, depPaths, err := b.buildModule(bc, id, absPath)
		bc.sem.Release(1)
		if err != nil {
			return err
		}
		bc.store(mod)
		for i, dep := range mod.Dependencies {
			b.visit(bc, dep.ResolvedID, depPaths[i], id)
		}
		return nil
	})
}

// buildModule reads, transforms, parses and rewrites one module. depPaths is
// parallel to the returned module's Dependencies.
func (b *Builder) buildModule(bc *buildContext, id, absPath string) (*Module, []string, error) {
	ctx, span := trace.Start(bc.ctx, trace.ScopeModule, "module:"+id)
	start := time.Now()
	var phase Phase

	fail := func(err error) (*Module, []string, error) {
		span.End(err.Error())
		b.notify(Progress{ModuleID: id, Path: absPath, Phase: phase, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return nil, nil, &ModuleError{ModuleID: id, Phase: phase, Err: err}
	}
	enter := func(next Phase) {
		phase = next
		b.notify(Progress{ModuleID: id, Path: absPath, Phase: phase, Status: StatusWorking})
	}
	enter(PhaseLoad)

	raw, err := b.opts.FS.ReadFile(absPath)
	if err != nil {
		return fail(fmt.Errorf("read %s: %w", absPath, err))
	}

	enter(PhaseTransform)
	source, cached, err := b.transform(ctx, id, absPath, string(raw))
	if err != nil {
		return fail(err)
	}

	enter(PhaseParse)
	tree, deps, err := jsast.Extract(absPath, source, b.opts.Callee)
	if err != nil {
		return fail(err)
	}

	enter(PhaseResolve)
	baseDir := path.Dir(absPath)
	mod := &Module{
		ID:           id,
		Path:         absPath,
		ChunkNames:   make(map[string]struct{}),
		Dependencies: make([]Dependency, 0, len(deps)),
		Cached:       cached,
	}
	depPaths := make([]string, 0, len(deps))
	for _, dep := range deps {
		resolved, err := b.opts.Resolver.Resolve(baseDir, dep.Specifier)
		if err != nil {
			var rerr *resolve.ResolutionError
			if errors.As(err, &rerr) {
				rerr.Importer = id
				rerr.Chain = bc.chain(id)
			}
			return fail(err)
		}
		bc.addFileDep(resolved)
		depID := project.ModuleID(b.opts.Root, resolved)
		dep.Rewrite(depID)
		mod.Dependencies = append(mod.Dependencies, Dependency{Specifier: dep.Specifier, ResolvedID: depID})
		depPaths = append(depPaths, resolved)
	}
	mod.Source = tree.Print()

	span.WithExtra("deps", strconv.Itoa(len(mod.Dependencies)))
	span.End("")
	b.notify(Progress{ModuleID: id, Path: absPath, Phase: PhaseResolve, Status: StatusDone, Cached: cached, Elapsed: time.Since(start)})
	b.log.Debug("module built", "id", id, "deps", len(mod.Dependencies), "cached", cached)
	return mod, depPaths, nil
}

// transform applies the loader chain, going through the cache when every
// transform in the chain is named.
func (b *Builder) transform(ctx context.Context, id, absPath, raw string) (string, bool, error) {
	if b.opts.Loaders == nil {
		return raw, false, nil
	}
	sig := b.opts.Loaders.Signature(absPath)
	useCache := b.opts.Cache != nil && sig != ""

	var key project.Digest
	if useCache {
		key = project.Sum(absPath, raw, sig)
		src, ok, err := b.opts.Cache.Get(key)
		if err != nil {
			// a hit can still carry an error from a failed backfill
			b.opts.Reporter.Report(diag.CacheReadFailed, diag.SevWarning, id, err.Error())
		}
		if ok {
			trace.Point(ctx, trace.ScopeTransform, "cache.hit", id)
			return src, true, nil
		}
	}

	out, err := b.opts.Loaders.Apply(absPath, raw)
	if err != nil {
		return "", false, err
	}
	if useCache {
		if err := b.opts.Cache.Put(key, out); err != nil {
			b.opts.Reporter.Report(diag.CacheWriteFailed, diag.SevWarning, id, err.Error())
		}
	}
	return out, false, nil
}

// reportSpellingClashes warns about distinct files whose ids differ only in
// Unicode normalization. They stay separate modules.
func reportSpellingClashes(clashes []spellingClash, reporter diag.Reporter) {
	sort.Slice(clashes, func(i, j int) bool {
		if clashes[i].first != clashes[j].first {
			return clashes[i].first < clashes[j].first
		}
		return clashes[i].second < clashes[j].second
	})
	for _, c := range clashes {
		reporter.Report(diag.GraphSpellingClash, diag.SevWarning, c.second,
			fmt.Sprintf("module %q differs from %q only in Unicode normalization", c.second, c.first),
			"both files are bundled; on macOS they would be the same file")
	}
}

func (b *Builder) notify(p Progress) {
	if b.opts.Observer != nil {
		b.opts.Observer(p)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
