// Package pokemon is the aggregation service behind the list, detail and
// evolution endpoints. It combines the upstream list or a category lookup,
// optional name search, pagination and concurrent detail enrichment into
// one response.
package pokemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/cache"
	"github.com/pokedex-bff/pokedex/pkg/fetcher"
	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/normalize"
	"github.com/pokedex-bff/pokedex/pkg/upstream"
)

var (
	// ErrNotFound means the requested entity does not exist upstream.
	ErrNotFound = errors.New("not found")
	// ErrBadGateway means a request-level upstream lookup failed.
	ErrBadGateway = errors.New("upstream unavailable")
	// ErrInvalidArgument means the caller supplied an unusable parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Upstream is the subset of the upstream client the service needs.
type Upstream interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	ListURL(offset, limit int) string
	PokemonURL(name string) string
	TypeURL(name string) string
	AbilityURL(name string) string
	SpeciesURL(name string) string
}

// Options tunes the service.
type Options struct {
	// ShortTTL applies to list pages and category member lists.
	ShortTTL time.Duration
	// LongTTL applies to details and evolution trees.
	LongTTL time.Duration

	DefaultLimit int
	MaxLimit     int
	// IndexLimit is the page size used to pull the full list for searches.
	IndexLimit int
	// LinkBase prefixes next/previous links, e.g. "/api/pokemon/".
	LinkBase    string
	Concurrency int
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{
		ShortTTL:     time.Hour,
		LongTTL:      24 * time.Hour,
		DefaultLimit: 9,
		MaxLimit:     100,
		IndexLimit:   100000,
		LinkBase:     "/api/pokemon/",
		Concurrency:  fetcher.DefaultConcurrency,
	}
}

// Service aggregates upstream data into client-facing responses.
type Service struct {
	up      Upstream
	cache   cache.Cache
	details *fetcher.Fetcher
	opts    Options
	logger  *zap.Logger
}

// New creates a Service. A nil cache disables caching.
func New(up Upstream, c cache.Cache, opts Options, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	logger = logging.OrNop(logger)
	return &Service{
		up:    up,
		cache: c,
		details: fetcher.New(up, c, opts.LongTTL,
			fetcher.WithConcurrency(opts.Concurrency),
			fetcher.WithLogger(logger),
		),
		opts:   opts,
		logger: logger.Named("pokemon"),
	}
}

// Get returns a single Pokémon's detail merged with its name. A record
// without a sprite is treated as missing.
func (s *Service) Get(ctx context.Context, name string) (models.Pokemon, error) {
	name = normalizeParam(name)
	if name == "" {
		return models.Pokemon{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	res := s.details.FetchOne(ctx, s.up.PokemonURL(name))
	switch {
	case errors.Is(res.Err, upstream.ErrNotFound):
		return models.Pokemon{}, fmt.Errorf("%w: pokemon %q", ErrNotFound, name)
	case res.Err != nil:
		s.logger.Warn("pokemon lookup failed", zap.String("name", name), zap.Error(res.Err))
		return models.Pokemon{}, fmt.Errorf("%w: %v", ErrBadGateway, res.Err)
	case res.Detail.Sprite == nil:
		return models.Pokemon{}, fmt.Errorf("%w: pokemon %q", ErrNotFound, name)
	}
	return models.Pokemon{Name: name, PokemonDetail: res.Detail}, nil
}

// Evolution returns the evolution tree that the named species belongs to.
func (s *Service) Evolution(ctx context.Context, name string) (models.EvolutionNode, error) {
	name = normalizeParam(name)
	if name == "" {
		return models.EvolutionNode{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	key := cache.EvolutionKey(name)
	var tree models.EvolutionNode
	if cache.GetJSON(ctx, s.cache, key, &tree) {
		return tree, nil
	}

	species, err := s.up.Fetch(ctx, s.up.SpeciesURL(name))
	if errors.Is(err, upstream.ErrNotFound) {
		return models.EvolutionNode{}, fmt.Errorf("%w: species %q", ErrNotFound, name)
	}
	if err != nil {
		return models.EvolutionNode{}, s.gatewayError("species lookup", name, err)
	}
	chainURL, err := normalize.EvolutionChainURL(species)
	if err != nil {
		return models.EvolutionNode{}, s.gatewayError("species lookup", name, err)
	}

	raw, err := s.up.Fetch(ctx, chainURL)
	if err != nil {
		return models.EvolutionNode{}, s.gatewayError("evolution chain lookup", name, err)
	}
	tree = normalize.ChainDocument(raw)
	if tree.Name == nil {
		return models.EvolutionNode{}, s.gatewayError("evolution chain lookup", name, normalize.ErrShape)
	}

	if err := cache.SetJSON(ctx, s.cache, key, tree, s.opts.LongTTL); err != nil {
		s.logger.Warn("cache evolution failed", zap.String("species", name), zap.Error(err))
	}
	return tree, nil
}

func (s *Service) gatewayError(op, name string, err error) error {
	s.logger.Warn(op+" failed", zap.String("name", name), zap.Error(err))
	return fmt.Errorf("%w: %s %q: %v", ErrBadGateway, op, name, err)
}

func normalizeParam(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
