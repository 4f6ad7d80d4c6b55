package geocache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/anten-puzl/CityPin/internal/domain"
	"github.com/anten-puzl/CityPin/internal/observability"
)

// CachingGeocoder wraps a Geocoder with the persistent cache and enforces the
// minimum delay between live requests required by the Nominatim usage policy.
// Cache hits return immediately; every call that reached the external service
// is followed by one delay, whether it succeeded or not.
type CachingGeocoder struct {
	inner   domain.Geocoder
	cache   *Cache
	delay   time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCachingGeocoder creates the cache-and-rate-limit decorator around a
// geocoder. The clock is injectable so tests can drive the delay with a fake.
func NewCachingGeocoder(inner domain.Geocoder, cache *Cache, delay time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *CachingGeocoder {
	return &CachingGeocoder{
		inner:   inner,
		cache:   cache,
		delay:   delay,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

func (g *CachingGeocoder) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.Location, error) {
	if loc, ok := g.cache.Lookup(coord); ok {
		g.metrics.CacheLookups.WithLabelValues("hit").Inc()
		g.logger.Debug("geocode cache hit", "key", coord.Key())
		return loc, nil
	}
	g.metrics.CacheLookups.WithLabelValues("miss").Inc()

	loc, err := g.inner.ReverseGeocode(ctx, coord)
	g.pause(ctx)
	if err != nil {
		return domain.Location{}, err
	}

	g.cache.Store(coord, loc)
	return loc, nil
}

// pause sleeps the configured delay on the injected clock, returning early on
// context cancellation.
func (g *CachingGeocoder) pause(ctx context.Context) {
	if g.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-g.clock.After(g.delay):
	}
}
