package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version int     `toml:"version"`
	Paths   Paths   `toml:"paths"`
	Build   Build   `toml:"build"`
	Cache   Cache   `toml:"cache"`
	Watch   Watch   `toml:"watch"`
	Bridges Bridges `toml:"bridges"`
	Exclude Exclude `toml:"exclude"`
	Metrics Metrics `toml:"metrics"`
	Tracing Tracing `toml:"tracing"`
}

type Paths struct {
	ContentDir string `toml:"content_dir"`
	CacheDir   string `toml:"cache_dir"`
}

type Build struct {
	Workers     int    `toml:"workers"`
	FailFast    bool   `toml:"fail_fast"`
	ManualEdges string `toml:"manual_edges"`
}

type Cache struct {
	Enabled *bool  `toml:"enabled"`
	Backend string `toml:"backend"`
	Codec   string `toml:"codec"`
	Path    string `toml:"path"`
}

type Watch struct {
	Enabled      bool          `toml:"enabled"`
	Debounce     time.Duration `toml:"debounce"`
	RebuildRate  float64       `toml:"rebuild_rate"`
	RebuildBurst int           `toml:"rebuild_burst"`
}

type Bridges struct {
	MinLinks int `toml:"min_links"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Tracing struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validatePaths(&cfg); err != nil {
		return nil, err
	}
	if err := validateCache(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateBridges(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ContentDir) == "" {
		cfg.Paths.ContentDir = "content"
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = "data/cache"
	}

	if strings.TrimSpace(cfg.Cache.Backend) == "" {
		cfg.Cache.Backend = "json"
	}
	if strings.TrimSpace(cfg.Cache.Codec) == "" {
		cfg.Cache.Codec = "plain"
	}
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		if cfg.Cache.Backend == "sqlite" {
			cfg.Cache.Path = "graph.db"
		} else {
			cfg.Cache.Path = "graph.json"
		}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RebuildRate <= 0 {
		cfg.Watch.RebuildRate = 1
	}
	if cfg.Watch.RebuildBurst <= 0 {
		cfg.Watch.RebuildBurst = 1
	}

	if cfg.Bridges.MinLinks == 0 {
		cfg.Bridges.MinLinks = 2
	}

	if strings.TrimSpace(cfg.Metrics.Address) == "" {
		cfg.Metrics.Address = "127.0.0.1:9187"
	}
	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "127.0.0.1:4317"
	}
}

// CacheEnabled defaults to true when the block is absent.
func (c Cache) CacheEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePaths(cfg *Config) error {
	if strings.TrimSpace(cfg.Paths.ContentDir) == "" {
		return fmt.Errorf("paths.content_dir must not be empty")
	}
	return nil
}

func validateCache(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	switch backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("cache.backend must be one of: json, sqlite")
	}

	codec := strings.ToLower(strings.TrimSpace(cfg.Cache.Codec))
	switch codec {
	case "plain", "zstd":
	default:
		return fmt.Errorf("cache.codec must be one of: plain, zstd")
	}
	if backend == "sqlite" && codec != "plain" {
		return fmt.Errorf("cache.codec %q only applies to the json backend", codec)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.Debounce > time.Minute {
		return fmt.Errorf("watch.debounce %v is above the 1m ceiling", cfg.Watch.Debounce)
	}
	return nil
}

func validateBridges(cfg *Config) error {
	if cfg.Bridges.MinLinks < 1 {
		return fmt.Errorf("bridges.min_links must be >= 1, got %d", cfg.Bridges.MinLinks)
	}
	return nil
}
