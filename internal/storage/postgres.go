package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresTier is the relational storage tier, typically the primary.
type PostgresTier struct {
	db *sql.DB
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS user_progress (
	user_id TEXT PRIMARY KEY,
	version BIGINT NOT NULL,
	op_id TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL
);`

// NewPostgresTier connects and initializes the schema.
func NewPostgresTier(ctx context.Context, dsn string) (*PostgresTier, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	return &PostgresTier{db: db}, nil
}

func (t *PostgresTier) Name() string { return "postgres" }

// Close closes the connection pool.
func (t *PostgresTier) Close() error { return t.db.Close() }

func (t *PostgresTier) Load(ctx context.Context, userID string) (*Record, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT version, op_id, updated_at, payload
		FROM user_progress
		WHERE user_id = $1
	`, userID)

	rec := Record{UserID: userID}
	if err := row.Scan(&rec.Version, &rec.OpID, &rec.UpdatedAt, &rec.Payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres load: %w", err)
	}
	return &rec, nil
}

func (t *PostgresTier) Save(ctx context.Context, rec *Record) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, version, op_id, updated_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			version = EXCLUDED.version,
			op_id = EXCLUDED.op_id,
			updated_at = EXCLUDED.updated_at,
			payload = EXCLUDED.payload
		WHERE EXCLUDED.version > user_progress.version
	`, rec.UserID, rec.Version, rec.OpID, rec.UpdatedAt.UTC(), rec.Payload)
	if err != nil {
		return fmt.Errorf("postgres save: %w", err)
	}
	return nil
}

func (t *PostgresTier) Delete(ctx context.Context, userID string) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

func (t *PostgresTier) Probe(ctx context.Context) error {
	if err := t.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres probe: %w", err)
	}
	return nil
}
