package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryConfig sizes the in-process cache.
type MemoryConfig struct {
	Size int `json:"size"`
	// MaxTTLSeconds bounds every entry regardless of the ttl passed to Put.
	// Zero leaves entries to their own ttl.
	MaxTTLSeconds int `json:"max_ttl_seconds"`
}

// SetDefaults applies sane defaults.
func (c *MemoryConfig) SetDefaults() {
	if c.Size == 0 {
		c.Size = 1024
	}
}

// Validate checks the settings.
func (c MemoryConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.MaxTTLSeconds < 0 {
		return fmt.Errorf("max_ttl_seconds must be positive")
	}
	return nil
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// Memory is a size-bounded LRU whose entries also expire on their own ttl.
type Memory struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemory builds an in-process backend.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	maxTTL := time.Duration(cfg.MaxTTLSeconds) * time.Second
	return &Memory{
		lru: expirable.NewLRU[string, memoryEntry](cfg.Size, nil, maxTTL),
		now: time.Now,
	}, nil
}

// Get returns the live value for key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Put stores value for ttl.
func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.lru.Add(key, memoryEntry{value: value, expires: m.now().Add(ttl)})
	return nil
}

// Len reports the number of cached entries, expired ones included until
// they are evicted.
func (m *Memory) Len() int { return m.lru.Len() }
