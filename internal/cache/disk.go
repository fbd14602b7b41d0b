package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskTier keeps cache entries as JSON files with an expiry header.
// Survives restarts, slower than memory.
type DiskTier struct {
	dir string
}

type diskEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// NewDiskTier makes sure the cache directory exists.
func NewDiskTier(dir string) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskTier{dir: dir}, nil
}

func (t *DiskTier) Name() string { return "disk" }

func (t *DiskTier) path(key string) string {
	safe := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(t.dir, safe+".json")
}

func (t *DiskTier) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(t.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("disk cache read: %w", err)
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is just a miss; drop it.
		_ = os.Remove(t.path(key))
		return nil, ErrMiss
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(t.path(key))
		return nil, ErrMiss
	}
	return entry.Value, nil
}

func (t *DiskTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := diskEntry{
		ExpiresAt: time.Now().Add(ttl),
		Value:     value,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("disk cache encode: %w", err)
	}
	tmp := t.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("disk cache write: %w", err)
	}
	if err := os.Rename(tmp, t.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("disk cache rename: %w", err)
	}
	return nil
}

func (t *DiskTier) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(t.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disk cache delete: %w", err)
	}
	return nil
}

func (t *DiskTier) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(t.dir); err != nil {
		return fmt.Errorf("disk cache probe: %w", err)
	}
	return nil
}
