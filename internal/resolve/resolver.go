// Package resolve maps a dependency specifier written in a module to the
// concrete file it names on the backing store.
package resolve

import (
	"bale/internal/fsys"
	"bale/internal/project"
)

// DefaultExtensions is used when no extensions are configured.
var DefaultExtensions = []string{".js"}

// Options configures resolution.
type Options struct {
	// Extensions are tried in order after the exact path misses.
	Extensions []string
}

// Resolver turns specifiers into existing absolute paths.
type Resolver struct {
	fs         fsys.FS
	extensions []string
}

// New creates a Resolver over fs.
func New(fs fsys.FS, opts Options) *Resolver {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Resolver{fs: fs, extensions: append([]string(nil), exts...)}
}

// Resolve joins baseDir and specifier with forward-slash semantics and
// returns the first existing candidate: the exact path, then the path with
// each extension appended in configured order.
func (r *Resolver) Resolve(baseDir, specifier string) (string, error) {
	joined := project.Join(baseDir, specifier)
	if r.fs.Exists(joined) {
		return joined, nil
	}
	tried := make([]string, 0, len(r.extensions)+1)
	tried = append(tried, joined)
	for _, ext := range r.extensions {
		candidate := joined + ext
		if r.fs.Exists(candidate) {
			return candidate, nil
		}
		tried = append(tried, candidate)
	}
	return "", &ResolutionError{
		Specifier: specifier,
		BaseDir:   project.ToUnixPath(baseDir),
		Tried:     tried,
	}
}
