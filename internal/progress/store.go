package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/revenuemediabot/DailycheckBot2025/internal/cache"
	"github.com/revenuemediabot/DailycheckBot2025/internal/storage"
)

// Store composes the cache layer and the storage gateway into the
// per-user progress store. The cache is read-through and never
// authoritative; writes invalidate it.
type Store struct {
	gateway *storage.Gateway
	cache   *cache.Layer
}

// NewStore builds a progress store. The cache layer may be nil.
func NewStore(gateway *storage.Gateway, cacheLayer *cache.Layer) *Store {
	return &Store{gateway: gateway, cache: cacheLayer}
}

func cacheKey(userID string) string {
	return "progress:" + userID
}

// Get loads the user's progress, cache first, falling through to the
// gateway. A user with no record yet gets a fresh empty snapshot
// (lazy creation; nothing is persisted until the first write).
func (s *Store) Get(ctx context.Context, userID string) (*UserProgress, error) {
	key := cacheKey(userID)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			p := New(userID)
			if err := json.Unmarshal(data, p); err == nil {
				return p, nil
			}
			// Corrupt cache entry; drop it and read through.
			s.cache.Invalidate(ctx, key)
		}
	}

	rec, err := s.gateway.Load(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return New(userID), nil
	}
	if err != nil {
		return nil, err
	}

	p := New(userID)
	if err := json.Unmarshal(rec.Payload, p); err != nil {
		return nil, fmt.Errorf("decode progress %s: %w", userID, err)
	}
	if s.cache != nil {
		s.cache.Fill(ctx, key, rec.Payload)
	}
	return p, nil
}

// Put persists the snapshot through the gateway and invalidates the
// user's cache entry. It stamps a fresh operation id and the next
// version before writing; on failure nothing was applied anywhere.
func (s *Store) Put(ctx context.Context, p *UserProgress) error {
	p.Version++
	p.OpID = uuid.NewString()

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", p.UserID, err)
	}
	rec := &storage.Record{
		UserID:    p.UserID,
		Version:   p.Version,
		OpID:      p.OpID,
		UpdatedAt: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.gateway.Save(ctx, rec); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, cacheKey(p.UserID))
	}
	return nil
}

// Reset deletes the user's record everywhere and invalidates caches.
func (s *Store) Reset(ctx context.Context, userID string) error {
	if err := s.gateway.Delete(ctx, userID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, cacheKey(userID))
	}
	return nil
}
