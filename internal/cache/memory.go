package cache

import (
	"sync"

	"bale/internal/project"
)

// Memory is a per-process cache, used by watch mode between rebuilds.
type Memory struct {
	mu   sync.RWMutex
	data map[project.Digest]string
}

// NewMemory creates a Memory cache with the given capacity hint.
func NewMemory(capHint int) *Memory {
	return &Memory{data: make(map[project.Digest]string, capHint)}
}

func (c *Memory) Get(key project.Digest) (string, bool, error) {
	c.mu.RLock()
	s, ok := c.data[key]
	c.mu.RUnlock()
	return s, ok, nil
}

func (c *Memory) Put(key project.Digest, source string) error {
	c.mu.Lock()
	c.data[key] = source
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
