// Package storage provides tiered durable persistence for user progress
// snapshots with automatic failover, background re-probing of failed
// tiers, and idempotent write replay.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a user. A not-found
// answer from a working tier is authoritative.
var ErrNotFound = errors.New("progress record not found")

// ErrAllTiersUnavailable means every configured tier failed for one
// operation. Fatal for that operation only; nothing was applied.
var ErrAllTiersUnavailable = errors.New("all storage tiers unavailable")

// Record is one persisted progress snapshot. Payload is an opaque JSON
// document owned by the progress package; the storage layer only keys on
// UserID and orders writes by Version.
type Record struct {
	UserID    string
	Version   int64
	OpID      string
	UpdatedAt time.Time
	Payload   []byte

	// Deleted marks a tombstone queued for replay after a reset.
	Deleted bool
}

// Tier is one backend in the fallback order. Save must be a
// version-guarded upsert: a write whose Version is not newer than the
// stored one is a silent no-op, which is what makes replay idempotent
// per (user, operation id).
type Tier interface {
	Name() string
	Load(ctx context.Context, userID string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, userID string) error
	Probe(ctx context.Context) error
}

// TierState is the gateway's view of one tier.
type TierState int

const (
	// Healthy tiers serve reads and writes.
	Healthy TierState = iota
	// Degraded tiers serve reads and writes but still have replay
	// backlog, so they may return briefly stale data.
	Degraded
	// Unavailable tiers are skipped until a probe succeeds.
	Unavailable
)

func (s TierState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// TierStatus is a point-in-time health report for one tier.
type TierStatus struct {
	Name          string
	State         TierState
	PendingReplay int
}
