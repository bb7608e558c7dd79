package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/UnknownOlympus/geocheck/internal/metrics"
)

// Geocoder is a cache-aware address lookup. It asks the cache first and falls back to
// the provider, storing what the provider returns. A nil cache disables caching.
type Geocoder struct {
	provider     geocoding.Provider
	providerName string
	cache        *Cache
	metrics      *metrics.Metrics
	log          *slog.Logger

	hits   int
	misses int
}

// NewGeocoder creates a lookup over provider. c and m may be nil.
func NewGeocoder(
	provider geocoding.Provider,
	providerName string,
	c *Cache,
	m *metrics.Metrics,
	log *slog.Logger,
) *Geocoder {
	return &Geocoder{
		provider:     provider,
		providerName: providerName,
		cache:        c,
		metrics:      m,
		log:          log,
	}
}

// Geocode returns the result for address and whether it came from the provider.
// Provider errors are returned as is and leave the cache untouched.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*geocoding.Result, bool, error) {
	if g.cache != nil {
		if result, ok := g.cache.Get(address); ok {
			g.hits++
			g.observeLookup("hit")
			g.log.DebugContext(ctx, "Geocode cache hit", "address", address)
			return result, false, nil
		}
	}

	g.misses++
	g.observeLookup("miss")

	start := time.Now()
	result, err := g.provider.Geocode(ctx, address)
	g.observeRequest(time.Since(start), result, err)
	if err != nil {
		return nil, true, err
	}

	g.log.DebugContext(ctx, "Geocode lookup", "address", address, "status", result.Status)

	if g.cache != nil && !result.Status.Transient() {
		g.cache.Put(address, result)
	}

	return result, true, nil
}

// Hits returns the number of lookups answered from the cache.
func (g *Geocoder) Hits() int { return g.hits }

// Misses returns the number of lookups sent to the provider.
func (g *Geocoder) Misses() int { return g.misses }

func (g *Geocoder) observeLookup(result string) {
	if g.metrics == nil || g.cache == nil {
		return
	}
	g.metrics.CacheLookups.WithLabelValues(result).Inc()
}

func (g *Geocoder) observeRequest(elapsed time.Duration, result *geocoding.Result, err error) {
	if g.metrics == nil {
		return
	}

	g.metrics.RequestSeconds.WithLabelValues(g.providerName).Observe(elapsed.Seconds())
	if err != nil {
		g.metrics.APIErrors.Inc()
		return
	}
	g.metrics.ProviderStatuses.WithLabelValues(string(result.Status)).Inc()
}
