// Package config provides configuration loading for the hosting process:
// tier targets for storage and cache, probe/timeout tuning, catalog
// location.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Debug       bool          `mapstructure:"debug"`
	CatalogPath string        `mapstructure:"catalog_path"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	Storage     StorageConfig `mapstructure:"storage"`
	Cache       CacheConfig   `mapstructure:"cache"`
}

// StorageConfig describes the durable tier chain, highest priority
// first.
type StorageConfig struct {
	OpTimeout     time.Duration `mapstructure:"op_timeout"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	Tiers         []StorageTier `mapstructure:"tiers"`
}

// StorageTier is one durable backend target.
type StorageTier struct {
	Kind string `mapstructure:"kind"` // postgres | sqlite | file
	DSN  string `mapstructure:"dsn,omitempty"`
	Path string `mapstructure:"path,omitempty"`
}

// CacheConfig describes the cache tier chain, highest priority first.
type CacheConfig struct {
	TTL   time.Duration `mapstructure:"ttl"`
	Tiers []CacheTier   `mapstructure:"tiers"`
}

// CacheTier is one cache backend target.
type CacheTier struct {
	Kind     string `mapstructure:"kind"` // redis | disk | memory
	Addr     string `mapstructure:"addr,omitempty"`
	Password string `mapstructure:"password,omitempty"`
	DB       int    `mapstructure:"db,omitempty"`
	Path     string `mapstructure:"path,omitempty"`
	Size     int    `mapstructure:"size,omitempty"`
}

// Default returns the local-first configuration: sqlite with a file
// fallback, memory cache.
func Default() *Config {
	return &Config{
		CatalogPath: "tasks.json",
		Storage: StorageConfig{
			OpTimeout:     3 * time.Second,
			ProbeInterval: 30 * time.Second,
			Tiers: []StorageTier{
				{Kind: "sqlite", Path: "dailycheck.db"},
				{Kind: "file", Path: "data"},
			},
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
			Tiers: []CacheTier{
				{Kind: "memory", Size: 1024},
			},
		},
	}
}

// Load reads configuration from the given file (optional) and the
// DAILYCHECK_* environment, layered over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("debug", false)
	v.SetDefault("catalog_path", "tasks.json")
	v.SetDefault("storage.op_timeout", 3*time.Second)
	v.SetDefault("storage.probe_interval", 30*time.Second)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetEnvPrefix("DAILYCHECK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown tier kinds and empty chains.
func (c *Config) Validate() error {
	if len(c.Storage.Tiers) == 0 {
		return fmt.Errorf("config: at least one storage tier is required")
	}
	for _, t := range c.Storage.Tiers {
		switch t.Kind {
		case "postgres":
			if t.DSN == "" {
				return fmt.Errorf("config: postgres tier needs a dsn")
			}
		case "sqlite", "file":
			if t.Path == "" {
				return fmt.Errorf("config: %s tier needs a path", t.Kind)
			}
		default:
			return fmt.Errorf("config: unknown storage tier kind %q", t.Kind)
		}
	}
	for _, t := range c.Cache.Tiers {
		switch t.Kind {
		case "redis":
			if t.Addr == "" {
				return fmt.Errorf("config: redis tier needs an addr")
			}
		case "disk":
			if t.Path == "" {
				return fmt.Errorf("config: disk cache tier needs a path")
			}
		case "memory":
		default:
			return fmt.Errorf("config: unknown cache tier kind %q", t.Kind)
		}
	}
	return nil
}
