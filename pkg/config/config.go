package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds all pokedex configuration.
type Config struct {
	Listen     string           `yaml:"listen"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Cache      CacheConfig      `yaml:"cache"`
	Pagination PaginationConfig `yaml:"pagination"`
	CORS       CORSConfig       `yaml:"cors"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// UpstreamConfig defines the third-party Pokémon API.
type UpstreamConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	// IndexLimit is the page size used to pull the whole list when searching.
	IndexLimit int `yaml:"index_limit"`
}

// CacheConfig selects the cache backend and its two TTL classes.
type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	ShortTTL  time.Duration `yaml:"short_ttl"`
	LongTTL   time.Duration `yaml:"long_ttl"`
	DBPath    string        `yaml:"db_path"`
	RedisURL  string        `yaml:"redis_url"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// PaginationConfig controls list page sizes and continuation links.
type PaginationConfig struct {
	DefaultLimit int    `yaml:"default_limit"`
	MaxLimit     int    `yaml:"max_limit"`
	LinkBase     string `yaml:"link_base"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig controls the zap logger. File enables rotation via lumberjack.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8000",
		Upstream: UpstreamConfig{
			BaseURL:     "https://pokeapi.co/api/v2",
			Timeout:     5 * time.Second,
			Concurrency: 9,
			IndexLimit:  100000,
		},
		Cache: CacheConfig{
			Backend:   BackendMemory,
			ShortTTL:  time.Hour,
			LongTTL:   24 * time.Hour,
			DBPath:    "pokedex.db",
			RedisURL:  "redis://localhost:6379/0",
			KeyPrefix: "pokedex:",
		},
		Pagination: PaginationConfig{
			DefaultLimit: 9,
			MaxLimit:     100,
			LinkBase:     "/api/pokemon/",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Metrics: MetricsConfig{Enabled: true},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load reads a YAML config file, expands environment variables and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("invalid config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("invalid config: upstream.base_url is required")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("invalid config: upstream.timeout must be positive")
	}
	if c.Upstream.Concurrency <= 0 {
		return errors.New("invalid config: upstream.concurrency must be positive")
	}
	if c.Upstream.IndexLimit <= 0 {
		return errors.New("invalid config: upstream.index_limit must be positive")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return errors.New("invalid config: pagination limits must satisfy 0 < default_limit <= max_limit")
	}
	return nil
}
