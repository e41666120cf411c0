package fsys

import (
	"fmt"
	"os"
	"path/filepath"
)

type realFS struct{}

// OS returns an FS backed by the host filesystem.
func OS() FS { return realFS{} }

func (realFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (realFS) Exists(path string) bool {
	info, err := os.Stat(filepath.FromSlash(path))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (realFS) WriteFile(path string, data []byte) error {
	native := filepath.FromSlash(path)
	if err := os.MkdirAll(filepath.Dir(native), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}
	// #nosec G306 -- bundles are meant to be readable by web servers
	return os.WriteFile(native, data, 0o644)
}
