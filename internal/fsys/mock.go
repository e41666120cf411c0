package fsys

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
)

// MockFS is an in-memory FS for tests. It does not touch the disk: files live
// in a map keyed by cleaned absolute path. Safe for concurrent use.
type MockFS struct {
	mu     sync.RWMutex
	files  map[string][]byte
	failOn map[string]error // WriteFile errors injected by tests
}

// NewMockFS creates a MockFS seeded with input (path -> contents).
func NewMockFS(input map[string]string) *MockFS {
	m := &MockFS{
		files:  make(map[string][]byte, len(input)),
		failOn: make(map[string]error),
	}
	for k, v := range input {
		m.files[path.Clean(k)] = []byte(v)
	}
	return m
}

// ReadFile implements FS.
func (m *MockFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists implements FS.
func (m *MockFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path.Clean(p)]
	return ok
}

// WriteFile implements FS.
func (m *MockFS) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := path.Clean(p)
	if err, ok := m.failOn[key]; ok {
		return &fs.PathError{Op: "write", Path: p, Err: err}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[key] = buf
	return nil
}

// FailWrites makes every later WriteFile to p return err.
func (m *MockFS) FailWrites(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("mock write failure")
	}
	m.failOn[path.Clean(p)] = err
}

// Set replaces the contents of p.
func (m *MockFS) Set(p, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = []byte(contents)
}

// Paths returns every stored path in sorted order.
func (m *MockFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
