// Package cache keeps loader output between builds.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"bale/internal/project"
)

// bump when Payload changes shape
const diskSchemaVersion uint16 = 1

// Payload is one cached loader result.
type Payload struct {
	Schema uint16
	Source string
	Stored time.Time
}

// Disk stores payloads as msgpack files, one per key.
// Safe for concurrent use.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/app or ~/.cache/app.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenDisk creates dir if needed.
func OpenDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string { return c.dir }

func (c *Disk) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// два уровня, чтобы не держать тысячи файлов в одном каталоге
	return filepath.Join(c.dir, "loaders", hexKey[:2], hexKey+".mp")
}

// Put writes source under key, replacing the file atomically.
func (c *Disk) Put(key project.Digest, source string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // gone after a successful rename

	payload := Payload{Schema: diskSchemaVersion, Source: source, Stored: time.Now().UTC()}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get returns the cached source for key. A payload from another schema
// version is a miss.
func (c *Disk) Get(key project.Digest) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return "", false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != diskSchemaVersion {
		return "", false, nil
	}
	return payload.Source, true, nil
}

// DropAll removes every entry.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименовать и удалить: параллельный Get увидит пустой каталог, а не половину
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}
