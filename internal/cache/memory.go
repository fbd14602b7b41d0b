package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryTier is an in-process LRU with a uniform TTL. Last resort tier:
// cheap, always available, lost on restart.
type MemoryTier struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryTier builds a memory tier holding at most size entries that
// expire after ttl.
func NewMemoryTier(size int, ttl time.Duration) *MemoryTier {
	if size <= 0 {
		size = 1024
	}
	return &MemoryTier{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (t *MemoryTier) Name() string { return "memory" }

func (t *MemoryTier) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := t.lru.Get(key); ok {
		return v, nil
	}
	return nil, ErrMiss
}

// Set stores a copy; the per-call ttl is ignored because the LRU expires
// uniformly with the ttl it was built with.
func (t *MemoryTier) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	t.lru.Add(key, cp)
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, key string) error {
	t.lru.Remove(key)
	return nil
}

func (t *MemoryTier) Probe(_ context.Context) error { return nil }
