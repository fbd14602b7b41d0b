// Package cache is a tiered read-through cache in front of the storage
// gateway. It is never a source of truth: every failure is logged and
// bypassed, and writes invalidate instead of updating.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/revenuemediabot/DailycheckBot2025/internal/metrics"
)

// ErrMiss is returned by a tier when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Tier is one cache backend in the fallback order.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Probe(ctx context.Context) error
}

const defaultTTL = 5 * time.Minute

// Layer walks its tiers in priority order. A miss or a broken tier is
// never fatal; the caller falls through to durable storage.
type Layer struct {
	tiers []Tier
	ttl   time.Duration
	mets  *metrics.Metrics
}

// NewLayer builds a cache layer; ttl <= 0 uses the default.
func NewLayer(tiers []Tier, ttl time.Duration, mets *metrics.Metrics) *Layer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Layer{tiers: tiers, ttl: ttl, mets: mets}
}

// Get returns the first hit across tiers. Expired entries count as
// misses.
func (l *Layer) Get(ctx context.Context, key string) ([]byte, bool) {
	for _, t := range l.tiers {
		value, err := t.Get(ctx, key)
		switch {
		case err == nil:
			l.mets.CacheHit(t.Name())
			return value, true
		case errors.Is(err, ErrMiss):
			l.mets.CacheMiss(t.Name())
		default:
			log.Debug().Err(err).Str("tier", t.Name()).Msg("cache get failed")
		}
	}
	return nil, false
}

// Fill repopulates every currently working tier after a durable read.
func (l *Layer) Fill(ctx context.Context, key string, value []byte) {
	for _, t := range l.tiers {
		if err := t.Set(ctx, key, value, l.ttl); err != nil {
			log.Debug().Err(err).Str("tier", t.Name()).Msg("cache fill failed")
		}
	}
}

// Invalidate removes the key from every tier. Invalidate-not-update
// avoids stale-after-write races under concurrent writers.
func (l *Layer) Invalidate(ctx context.Context, key string) {
	for _, t := range l.tiers {
		if err := t.Delete(ctx, key); err != nil {
			log.Debug().Err(err).Str("tier", t.Name()).Msg("cache invalidate failed")
		}
	}
}
