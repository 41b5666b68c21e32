// Package fetcher resolves many Pokémon detail URLs in parallel. Output is
// positional: result i always belongs to input URL i, whatever order the
// requests complete in, and one failing item never affects the others.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pokedex-bff/pokedex/pkg/cache"
	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/metrics"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/normalize"
)

// DefaultConcurrency is the in-flight request ceiling per batch.
const DefaultConcurrency = 9

// Source fetches one raw upstream document.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Result is the outcome of fetching one detail URL. On failure Detail is
// models.EmptyDetail and Err says why.
type Result struct {
	URL    string
	Detail models.PokemonDetail
	Err    error
	Cached bool
}

// Fetcher fetches and normalizes details through a cache.
type Fetcher struct {
	source      Source
	cache       cache.Cache
	ttl         time.Duration
	concurrency int
	logger      *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithConcurrency sets the per-batch parallelism ceiling.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = logging.OrNop(l).Named("fetcher") }
}

// New creates a Fetcher. Normalized details are cached for ttl; a nil cache
// disables caching.
func New(source Source, c cache.Cache, ttl time.Duration, opts ...Option) *Fetcher {
	if c == nil {
		c = cache.Nop{}
	}
	f := &Fetcher{
		source:      source,
		cache:       c,
		ttl:         ttl,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll returns one detail per URL, in input order. Failed items are
// replaced by models.EmptyDetail.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []models.PokemonDetail {
	results := f.FetchResults(ctx, urls)
	details := make([]models.PokemonDetail, len(results))
	for i, r := range results {
		details[i] = r.Detail
	}
	return details
}

// FetchResults is FetchAll with the per-item outcome kept.
func (f *Fetcher) FetchResults(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = f.FetchOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			metrics.DetailFailuresTotal.Inc()
		}
	}
	return results
}

// FetchOne resolves a single detail URL: cache first, then upstream.
// Successful upstream answers are normalized and cached. Failures are not
// counted as degraded list slots.
func (f *Fetcher) FetchOne(ctx context.Context, url string) Result {
	key := cache.DetailKey(url)

	var cached models.PokemonDetail
	if cache.GetJSON(ctx, f.cache, key, &cached) {
		return Result{URL: url, Detail: cached, Cached: true}
	}

	raw, err := f.source.Fetch(ctx, url)
	if err != nil {
		return f.failed(url, err)
	}
	detail, err := normalize.DetailStrict(raw)
	if err != nil {
		return f.failed(url, err)
	}

	if err := cache.SetJSON(ctx, f.cache, key, detail, f.ttl); err != nil {
		f.logger.Warn("cache detail failed", zap.String("url", url), zap.Error(err))
	}
	return Result{URL: url, Detail: detail}
}

func (f *Fetcher) failed(url string, err error) Result {
	f.logger.Debug("detail degraded to empty", zap.String("url", url), zap.Error(err))
	return Result{URL: url, Detail: models.EmptyDetail(), Err: fmt.Errorf("fetch detail %s: %w", url, err)}
}
