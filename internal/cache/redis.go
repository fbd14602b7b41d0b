package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is the distributed cache tier, shared between the messaging
// and web front-end processes.
type RedisTier struct {
	client *redis.Client
}

// NewRedisTier connects to the given address ("host:port").
func NewRedisTier(addr, password string, db int) *RedisTier {
	return &RedisTier{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (t *RedisTier) Name() string { return "redis" }

// Close releases the client's connections.
func (t *RedisTier) Close() error { return t.client.Close() }

func (t *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := t.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (t *RedisTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (t *RedisTier) Delete(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (t *RedisTier) Probe(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis probe: %w", err)
	}
	return nil
}
