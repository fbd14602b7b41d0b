package root

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/revenuemediabot/DailycheckBot2025/internal/cache"
	"github.com/revenuemediabot/DailycheckBot2025/internal/catalog"
	"github.com/revenuemediabot/DailycheckBot2025/internal/config"
	"github.com/revenuemediabot/DailycheckBot2025/internal/engine"
	"github.com/revenuemediabot/DailycheckBot2025/internal/logging"
	"github.com/revenuemediabot/DailycheckBot2025/internal/metrics"
	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
	"github.com/revenuemediabot/DailycheckBot2025/internal/storage"
)

// app wires the whole core for one CLI invocation.
type app struct {
	cfg     *config.Config
	mets    *metrics.Metrics
	gateway *storage.Gateway
	coord   *engine.Coordinator

	closers []io.Closer
}

// openApp builds tiers, gateway, cache and coordinator from config.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDebug {
		cfg.Debug = true
	}
	logging.Init(cfg.Debug)

	a := &app{cfg: cfg, mets: metrics.New()}

	var tiers []storage.Tier
	for _, tc := range cfg.Storage.Tiers {
		t, err := a.buildStorageTier(ctx, tc)
		if err != nil {
			// A tier that cannot even be constructed is skipped; the
			// remaining chain still serves, which is the whole point of
			// the fallback order.
			log.Warn().Err(err).Str("kind", tc.Kind).Msg("storage tier skipped")
			continue
		}
		tiers = append(tiers, t)
	}
	if len(tiers) == 0 {
		a.Close()
		return nil, fmt.Errorf("no storage tier could be opened")
	}
	a.gateway = storage.NewGateway(tiers, storage.Options{
		OpTimeout:     cfg.Storage.OpTimeout,
		ProbeInterval: cfg.Storage.ProbeInterval,
		Metrics:       a.mets,
	})

	var cacheTiers []cache.Tier
	for _, tc := range cfg.Cache.Tiers {
		t, err := a.buildCacheTier(tc)
		if err != nil {
			log.Warn().Err(err).Str("kind", tc.Kind).Msg("cache tier skipped")
			continue
		}
		cacheTiers = append(cacheTiers, t)
	}
	layer := cache.NewLayer(cacheTiers, cfg.Cache.TTL, a.mets)

	registry := catalog.NewRegistry()
	if err := registry.ReplaceFromFile(cfg.CatalogPath); err != nil {
		a.Close()
		return nil, fmt.Errorf("load task catalog: %w", err)
	}

	store := progress.NewStore(a.gateway, layer)
	a.coord = engine.New(registry, store, nil, a.mets)
	return a, nil
}

func (a *app) buildStorageTier(ctx context.Context, tc config.StorageTier) (storage.Tier, error) {
	switch tc.Kind {
	case "postgres":
		t, err := storage.NewPostgresTier(ctx, tc.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, t)
		return t, nil
	case "sqlite":
		t, err := storage.NewSQLiteTier(tc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, t)
		return t, nil
	case "file":
		return storage.NewFileTier(tc.Path)
	default:
		return nil, fmt.Errorf("unknown storage tier kind %q", tc.Kind)
	}
}

func (a *app) buildCacheTier(tc config.CacheTier) (cache.Tier, error) {
	switch tc.Kind {
	case "redis":
		t := cache.NewRedisTier(tc.Addr, tc.Password, tc.DB)
		a.closers = append(a.closers, t)
		return t, nil
	case "disk":
		return cache.NewDiskTier(tc.Path)
	case "memory":
		return cache.NewMemoryTier(tc.Size, a.cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache tier kind %q", tc.Kind)
	}
}

// Close stops the prober and releases tier resources.
func (a *app) Close() {
	if a.gateway != nil {
		a.gateway.Close()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
