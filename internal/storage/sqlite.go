package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteTier is the embedded storage tier.
type SQLiteTier struct {
	db *sql.DB
}

// NewSQLiteTier opens (and creates if missing) the SQLite database at
// path, applies pragmas and migrations.
func NewSQLiteTier(path string) (*SQLiteTier, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(stmt); err != nil {
			if stmt == "PRAGMA journal_mode=WAL;" {
				log.Warn().Err(err).Msg("sqlite: WAL mode not enabled")
				continue
			}
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &SQLiteTier{db: db}, nil
}

func (t *SQLiteTier) Name() string { return "sqlite" }

// Close closes the underlying database.
func (t *SQLiteTier) Close() error { return t.db.Close() }

func (t *SQLiteTier) Load(ctx context.Context, userID string) (*Record, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT version, op_id, updated_at, payload
		FROM user_progress
		WHERE user_id = ?
	`, userID)

	rec := Record{UserID: userID}
	var updatedAt string
	if err := row.Scan(&rec.Version, &rec.OpID, &updatedAt, &rec.Payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite load: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite parse updated_at: %w", err)
	}
	rec.UpdatedAt = ts
	return &rec, nil
}

// Save is a version-guarded upsert: stale versions are silently ignored,
// which keeps replayed writes idempotent.
func (t *SQLiteTier) Save(ctx context.Context, rec *Record) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, version, op_id, updated_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			version = excluded.version,
			op_id = excluded.op_id,
			updated_at = excluded.updated_at,
			payload = excluded.payload
		WHERE excluded.version > user_progress.version
	`, rec.UserID, rec.Version, rec.OpID, rec.UpdatedAt.UTC().Format(time.RFC3339Nano), rec.Payload)
	if err != nil {
		return fmt.Errorf("sqlite save: %w", err)
	}
	return nil
}

func (t *SQLiteTier) Delete(ctx context.Context, userID string) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

func (t *SQLiteTier) Probe(ctx context.Context) error {
	if err := t.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite probe: %w", err)
	}
	return nil
}
