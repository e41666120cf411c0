// Package watch re-runs a build whenever one of its file dependencies
// changes on disk.
//
// The project root is watched recursively; events are filtered against the
// dependency set reported by the last build and coalesced over a debounce
// window, so an editor's write-then-rename produces one rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 150 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// BuildFunc runs one build and returns the absolute paths of every file it
// read. deps should be returned even when err is non-nil.
type BuildFunc func(ctx context.Context) (deps []string, err error)

// Result describes one build triggered by the watcher.
type Result struct {
	// Changed is empty for the initial build.
	Changed []string
	Deps    int
	Elapsed time.Duration
	Err     error
}

// Config holds watcher parameters.
type Config struct {
	// Root is watched recursively.
	Root string
	// Ignore holds extra doublestar patterns relative to Root. The output
	// directory belongs here so emitted chunks never retrigger a build.
	Ignore   []string
	Debounce time.Duration
	Build    BuildFunc
	OnResult func(Result)
	Logger   *log.Logger
}

// Watcher drives rebuilds. Run may be called once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	ignores  []string
	debounce time.Duration
	log      *log.Logger
	started  atomic.Bool

	deps   map[string]struct{}
	failed bool
}

// New validates cfg and registers every non-ignored directory under Root.
func New(cfg Config) (*Watcher, error) {
	if cfg.Build == nil {
		return nil, errors.New("watch: missing build function")
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     absRoot,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		log:      logger,
		deps:     make(map[string]struct{}),
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run builds once, then rebuilds on relevant changes until ctx is done.
// Builds run on the calling goroutine, one at a time; events arriving
// during a build are coalesced into the next one.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("close fsnotify", "err", err)
		}
	}()

	w.build(ctx, nil)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.relevant(evt.Name) {
				continue
			}
			pending[filepath.Clean(evt.Name)] = struct{}{}
			timer.Reset(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.build(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// события потеряны: пересобираем всё
				pending[w.root] = struct{}{}
				timer.Reset(w.debounce)
				timerC = timer.C
				continue
			}
			w.log.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) build(ctx context.Context, changed []string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	deps, err := w.cfg.Build(ctx)
	w.setDeps(deps)
	w.failed = err != nil
	res := Result{Changed: changed, Deps: len(w.deps), Elapsed: time.Since(start), Err: err}
	w.log.Debug("rebuild finished", "changed", len(changed), "deps", res.Deps, "elapsed", res.Elapsed, "err", err)
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(res)
	}
}

func (w *Watcher) setDeps(deps []string) {
	// пустой список после сбоя не должен стирать известные зависимости
	if len(deps) == 0 {
		return
	}
	clear(w.deps)
	for _, dep := range deps {
		w.deps[filepath.Clean(filepath.FromSlash(dep))] = struct{}{}
	}
}

// relevant reports whether a change to path should trigger a rebuild. After
// a failed build any non-ignored change counts: the missing file may just
// have been created.
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if w.isIgnored(path) {
		return false
	}
	if w.failed || len(w.deps) == 0 {
		return true
	}
	_, ok := w.deps[path]
	return ok
}

func (w *Watcher) isIgnored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, rel+"/"); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.isIgnored(path) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.log.Warn("add new directory", "path", path, "err", err)
	}
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
