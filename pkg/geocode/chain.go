package geocode

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chain tries providers in order and returns the first non-empty result set.
// Every stage failure (network error, non-200, malformed body) is swallowed
// and means "try the next stage"; the chain itself never returns an error.
// Stages run strictly sequentially so cheap, precise providers always get
// first refusal before permissive or paid ones.
type Chain struct {
	providers        []Provider
	cache            *ResultCache
	batchConcurrency int
}

// ChainOption configures the chain.
type ChainOption func(*Chain)

// WithCache attaches a result cache to the chain.
func WithCache(cache *ResultCache) ChainOption {
	return func(c *Chain) { c.cache = cache }
}

// WithBatchConcurrency sets the max parallel queries for GeocodeBatch. The
// per-query chain remains sequential regardless.
func WithBatchConcurrency(n int) ChainOption {
	return func(c *Chain) {
		if n > 0 {
			c.batchConcurrency = n
		}
	}
}

// NewChain creates a chain over the given providers, tried in order.
func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers:        providers,
		batchConcurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode runs the fallback chain. The returned slice is the first producing
// stage's entire result set, unfiltered and unmerged; it is empty only when
// every stage was exhausted.
func (c *Chain) Geocode(ctx context.Context, q Query) []Result {
	var key string
	if c.cache != nil {
		key = cacheKey(q)
		if cached, ok := c.cache.Get(key); ok {
			return cached
		}
	}

	var results []Result
	for _, p := range c.providers {
		if !p.Available() {
			continue
		}
		stage, err := p.Geocode(ctx, q)
		if err != nil {
			zap.L().Debug("geocode: stage failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", q.Raw),
				zap.Error(err),
			)
			continue
		}
		if len(stage) > 0 {
			results = stage
			break
		}
	}

	if c.cache != nil {
		c.cache.Put(key, results)
	}
	return results
}

// GeocodeBatch resolves multiple queries concurrently, each through its own
// sequential chain run. Result order matches the input order.
func (c *Chain) GeocodeBatch(ctx context.Context, queries []Query) [][]Result {
	results := make([][]Result, len(queries))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.batchConcurrency)
	for i, q := range queries {
		eg.Go(func() error {
			results[i] = c.Geocode(gCtx, q)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// Suggest returns autocomplete candidates from the first provider that
// supports suggestions (Photon). There is no fallback: a suggester failure
// yields an empty slice.
func (c *Chain) Suggest(ctx context.Context, text string, limit int) []Result {
	for _, p := range c.providers {
		s, ok := p.(Suggester)
		if !ok || !p.Available() {
			continue
		}
		results, err := s.Suggest(ctx, text, limit)
		if err != nil {
			zap.L().Debug("geocode: suggest failed",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			return nil
		}
		return results
	}
	return nil
}

// Reverse resolves a coordinate via the first provider implementing reverse
// geocoding; an empty slice when none succeeds.
func (c *Chain) Reverse(ctx context.Context, lat, lon float64) []Result {
	for _, p := range c.providers {
		r, ok := p.(ReverseGeocoder)
		if !ok || !p.Available() {
			continue
		}
		results, err := r.Reverse(ctx, lat, lon)
		if err != nil {
			zap.L().Debug("geocode: reverse failed, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		return results
	}
	return nil
}

// DefaultProviders builds the production chain order: bounded Nominatim,
// unbounded Nominatim, Photon, Census one-line, Census structured, ArcGIS,
// and OpenCage when a key is configured.
func DefaultProviders(opencageKey string) []Provider {
	return []Provider{
		NewNominatim("", true),
		NewNominatim("", false),
		NewPhoton(""),
		NewCensusOneLine(""),
		NewCensusStructured(""),
		NewArcGIS(""),
		NewOpenCage("", opencageKey),
	}
}
