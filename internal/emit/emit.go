// Package emit writes rendered chunks to the output directory.
package emit

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"bale/internal/chunk"
	"bale/internal/fsys"
	"bale/internal/project"
	"bale/internal/trace"
)

// DefaultFilename is used when no output filename template is configured.
const DefaultFilename = "[name].js"

const (
	placeholderName = "[name]"
	placeholderHash = "[contenthash]"
	hashLen         = 8
)

// ErrDuplicateTarget is returned when two chunks map to the same file.
var ErrDuplicateTarget = errors.New("another chunk already writes this file")

// Asset is one written chunk file.
type Asset struct {
	Chunk string
	Path  string // absolute, forward slashes
	Size  int
	Hash  string // short content hash
}

// EmitError reports a chunk that could not be written.
type EmitError struct {
	Chunk string
	Path  string
	Cause error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit chunk %q to %s: %v", e.Chunk, e.Path, e.Cause)
}

func (e *EmitError) Unwrap() error { return e.Cause }

// Emitter writes chunks under Dir using the Filename template.
type Emitter struct {
	fs       fsys.FS
	dir      string
	filename string
}

// New creates an Emitter. filename may contain [name] and [contenthash].
func New(fs fsys.FS, dir, filename string) (*Emitter, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	if fs == nil {
		fs = fsys.OS()
	}
	return &Emitter{fs: fs, dir: path.Clean(project.ToUnixPath(dir)), filename: filename}, nil
}

// ValidateFilename rejects unknown [placeholders] and absolute templates.
func ValidateFilename(tmpl string) error {
	if path.IsAbs(project.ToUnixPath(tmpl)) {
		return fmt.Errorf("output filename %q must be relative to the output path", tmpl)
	}
	rest := strings.NewReplacer(placeholderName, "", placeholderHash, "").Replace(tmpl)
	if i := strings.IndexByte(rest, '['); i >= 0 {
		if j := strings.IndexByte(rest[i:], ']'); j > 0 {
			return fmt.Errorf("output filename %q: unknown placeholder %s", tmpl, rest[i:i+j+1])
		}
	}
	return nil
}

// Filename substitutes the placeholders for one chunk.
func Filename(tmpl, name string, code []byte) string {
	out := strings.ReplaceAll(tmpl, placeholderName, name)
	if strings.Contains(out, placeholderHash) {
		out = strings.ReplaceAll(out, placeholderHash, ContentHash(code))
	}
	return out
}

// ContentHash is the short hex digest used by [contenthash].
func ContentHash(code []byte) string {
	return project.Sum(string(code)).Short(hashLen)
}

// Target returns the absolute output path of c.
func (e *Emitter) Target(c *chunk.Chunk) (string, error) {
	return Within(e.dir, Filename(e.filename, c.Name, c.Code))
}

// Within joins rel onto dir and fails when the result climbs out of dir.
// The joined path is returned either way.
func Within(dir, rel string) (string, error) {
	dir = path.Clean(project.ToUnixPath(dir))
	target := path.Join(dir, project.ToUnixPath(rel))
	if target == dir || !strings.HasPrefix(target, strings.TrimSuffix(dir, "/")+"/") {
		return target, fmt.Errorf("resolves outside the output path %s", dir)
	}
	return target, nil
}

// Emit writes one chunk.
func (e *Emitter) Emit(c *chunk.Chunk) (Asset, error) {
	target, err := e.Target(c)
	if err != nil {
		return Asset{}, &EmitError{Chunk: c.Name, Path: target, Cause: err}
	}
	if err := e.fs.WriteFile(target, c.Code); err != nil {
		return Asset{}, &EmitError{Chunk: c.Name, Path: target, Cause: err}
	}
	return Asset{Chunk: c.Name, Path: target, Size: len(c.Code), Hash: ContentHash(c.Code)}, nil
}

// EmitAll writes every chunk. A failed chunk does not stop or undo its
// siblings; all failures are joined into the returned error.
func (e *Emitter) EmitAll(ctx context.Context, chunks []*chunk.Chunk) ([]Asset, error) {
	_, span := trace.Start(ctx, trace.ScopePhase, "emit")
	defer span.End("")

	assets := make([]Asset, 0, len(chunks))
	owners := make(map[string]string, len(chunks))
	var errs []error
	for _, c := range chunks {
		target, err := e.Target(c)
		if err == nil {
			if _, taken := owners[target]; taken {
				err = ErrDuplicateTarget
			}
		}
		if err != nil {
			errs = append(errs, &EmitError{Chunk: c.Name, Path: target, Cause: err})
			continue
		}
		owners[target] = c.Name

		asset, err := e.Emit(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		assets = append(assets, asset)
	}
	return assets, errors.Join(errs...)
}
