// Package fsys is the filesystem collaborator used by the bundler: it reads
// module sources, answers existence probes for the resolver, and writes
// emitted chunks. Paths are always forward-slash and absolute.
package fsys

import (
	"errors"
	"io/fs"
)

// ErrNotExist is returned by ReadFile when the path does not name a file.
var ErrNotExist = fs.ErrNotExist

// FS is the narrow filesystem surface the bundler needs.
type FS interface {
	// ReadFile returns the file contents or an error wrapping ErrNotExist.
	ReadFile(path string) ([]byte, error)
	// Exists reports whether path names a regular file.
	Exists(path string) bool
	// WriteFile creates parent directories as needed.
	WriteFile(path string, data []byte) error
}

// IsNotExist reports whether err means the file was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}
