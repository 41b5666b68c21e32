// Package upstream issues single GET requests against the third-party
// Pokémon REST API. Every failure is reported as a typed error and never
// as a panic; callers that only care about presence use Get.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/metrics"
)

var (
	// ErrNotFound is returned when upstream answers 404.
	ErrNotFound = errors.New("upstream: not found")
	// ErrUnavailable covers network errors, timeouts, other non-2xx statuses
	// and malformed JSON bodies.
	ErrUnavailable = errors.New("upstream: unavailable")
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 5 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 32 << 20

// Client talks to the upstream Pokémon API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client rooted at baseURL (for example
// https://pokeapi.co/api/v2). A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.OrNop(logger).Named("upstream"),
	}
}

// Fetch GETs rawURL and returns the JSON body. The error wraps ErrNotFound
// or ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.fetch(ctx, rawURL)
	metrics.UpstreamRequestDurationSeconds.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.UpstreamRequestsTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.UpstreamRequestsTotal.WithLabelValues("unavailable").Inc()
		c.logger.Debug("upstream request failed", zap.String("url", rawURL), zap.Error(err))
	}
	return body, err
}

// Get is the fail-soft form of Fetch: it reports absence instead of an error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, bool) {
	body, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed JSON from %s", ErrUnavailable, rawURL)
	}
	return body, nil
}

// ListURL addresses one page of the pokemon list endpoint.
func (c *Client) ListURL(offset, limit int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return c.baseURL + "/pokemon?" + q.Encode()
}

// PokemonURL addresses a single Pokémon by name or id.
func (c *Client) PokemonURL(name string) string {
	return c.resource("pokemon", name)
}

// TypeURL addresses a type category.
func (c *Client) TypeURL(name string) string {
	return c.resource("type", name)
}

// AbilityURL addresses an ability category.
func (c *Client) AbilityURL(name string) string {
	return c.resource("ability", name)
}

// SpeciesURL addresses a Pokémon species, which links to its evolution chain.
func (c *Client) SpeciesURL(name string) string {
	return c.resource("pokemon-species", name)
}

func (c *Client) resource(kind, name string) string {
	return c.baseURL + "/" + kind + "/" + url.PathEscape(strings.ToLower(strings.TrimSpace(name)))
}
