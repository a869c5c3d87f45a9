package weather

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
)

// CachedSource wraps a WeatherSource with an in-memory LRU keyed by location
// and season end date, so repeated requests for a field on the same day share
// one set of upstream calls. Cached inputs are shared and must not be mutated.
type CachedSource struct {
	inner   domain.WeatherSource
	cache   *lruCache[domain.WeatherInputs]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a weather source.
func NewCachedSource(inner domain.WeatherSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache[domain.WeatherInputs](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchWeather(ctx context.Context, loc domain.Location, season domain.Season) (domain.WeatherInputs, error) {
	key := cacheKey(loc, season)
	if in, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return in, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	in, err := c.inner.FetchWeather(ctx, loc, season)
	if err != nil {
		return in, err
	}
	c.cache.put(key, in)
	return in, nil
}

// cacheKey rounds coordinates to four decimals (about 10 m), well inside one
// grid cell of every upstream.
func cacheKey(loc domain.Location, season domain.Season) string {
	return fmt.Sprintf("%.4f,%.4f|%s", loc.Lat, loc.Lon, season.End.Format(domain.DateLayout))
}

// lruCache is a mutex-guarded LRU map. A non-positive size keeps nothing.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type lruEntry[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[V]).value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})

	for c.order.Len() > max(c.maxEntries, 0) {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry[V]).key)
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
