package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileTier stores one JSON file per user under a data directory. It is
// the lowest tier: slow and simple, but available whenever the disk is.
type FileTier struct {
	dir string
}

type fileEnvelope struct {
	Version   int64           `json:"version"`
	OpID      string          `json:"op_id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Payload   json.RawMessage `json:"payload"`
}

// NewFileTier makes sure the data directory exists.
func NewFileTier(dir string) (*FileTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileTier{dir: dir}, nil
}

func (t *FileTier) Name() string { return "file" }

func (t *FileTier) path(userID string) string {
	return filepath.Join(t.dir, "user_"+userID+".json")
}

func (t *FileTier) Load(ctx context.Context, userID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(t.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("file load: %w", err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("file decode: %w", err)
	}
	return &Record{
		UserID:    userID,
		Version:   env.Version,
		OpID:      env.OpID,
		UpdatedAt: env.UpdatedAt,
		Payload:   env.Payload,
	}, nil
}

// Save writes atomically via a temp file rename. The version guard reads
// the current file first; a concurrent writer is not a concern because
// the gateway serializes writes per user.
func (t *FileTier) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cur, err := t.Load(ctx, rec.UserID); err == nil && cur.Version >= rec.Version {
		return nil
	}

	env := fileEnvelope{
		Version:   rec.Version,
		OpID:      rec.OpID,
		UpdatedAt: rec.UpdatedAt,
		Payload:   rec.Payload,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("file encode: %w", err)
	}

	tmp := t.path(rec.UserID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file write: %w", err)
	}
	if err := os.Rename(tmp, t.path(rec.UserID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("file rename: %w", err)
	}
	return nil
}

func (t *FileTier) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(t.path(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file delete: %w", err)
	}
	return nil
}

// Probe checks that the data directory is still writable.
func (t *FileTier) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	probe := filepath.Join(t.dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("file probe: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}
