package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/cache"
	"github.com/pokedex-bff/pokedex/pkg/cache/memory"
	"github.com/pokedex-bff/pokedex/pkg/cache/redis"
	"github.com/pokedex-bff/pokedex/pkg/cache/sqlite"
	"github.com/pokedex-bff/pokedex/pkg/config"
	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/pokemon"
	"github.com/pokedex-bff/pokedex/pkg/upstream"
)

// app bundles the components every command builds from config.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   cache.Store
	service *pokemon.Service
}

// newApp loads config and wires logger, cache backend, upstream client and
// aggregation service. Call close when done.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	up := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	svc := pokemon.New(up, cache.Instrument(store), serviceOptions(cfg), logger)

	return &app{cfg: cfg, logger: logger, store: store, service: svc}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func serviceOptions(cfg *config.Config) pokemon.Options {
	return pokemon.Options{
		ShortTTL:     cfg.Cache.ShortTTL,
		LongTTL:      cfg.Cache.LongTTL,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
		IndexLimit:   cfg.Upstream.IndexLimit,
		LinkBase:     cfg.Pagination.LinkBase,
		Concurrency:  cfg.Upstream.Concurrency,
	}
}

// openStore opens the configured cache backend. The memory backend sweeps
// expired entries until ctx is done.
func openStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		c := memory.New()
		go c.Sweep(ctx, memory.DefaultSweepInterval)
		return c, nil
	case config.BackendSQLite:
		c, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendRedis:
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return redis.New(client, cfg.KeyPrefix), nil
	case config.BackendNone:
		return cache.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
