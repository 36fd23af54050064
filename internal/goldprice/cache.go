package goldprice

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const mockBasePrice = 65.0

// Snapshot is the last known feed value.
type Snapshot struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// Metrics counts feed traffic and fallback servings.
type Metrics struct {
	Fetches       prometheus.Counter
	FetchFailures prometheus.Counter
	CacheHits     prometheus.Counter
	Fallbacks     prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gold_feed_fetches_total",
			Help: "Attempts against the external gold price feed",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gold_feed_fetch_failures_total",
			Help: "Failed feed fetch attempts",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gold_price_cache_hits_total",
			Help: "Price reads served from a fresh snapshot",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gold_price_fallbacks_total",
			Help: "Price reads served from a stale snapshot or mock value",
		}),
	}

	reg.MustRegister(m.Fetches, m.FetchFailures, m.CacheHits, m.Fallbacks)
	return m
}

// Cache holds the single process-wide gold price snapshot. Construct one at
// startup and hand it to everything that needs a price.
//
// The whole refresh path runs under the mutex: concurrent callers of an
// expired snapshot wait for one fetch instead of racing their own.
type Cache struct {
	mu       sync.Mutex
	fetcher  Fetcher
	ttl      time.Duration
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
	snapshot *Snapshot
}

func NewCache(f Fetcher, ttl time.Duration, m *Metrics, log *zap.Logger) *Cache {
	return &Cache{
		fetcher: f,
		ttl:     ttl,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Price returns a usable gold price per gram in USD. It never fails: a
// fresh snapshot short-circuits, a fetch failure falls back to the stale
// snapshot if one exists, and with no snapshot at all a mock price is
// served. Callers cannot tell a live price from a fallback except by
// comparing the snapshot timestamp to now.
func (c *Cache) Price(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.snapshot != nil && now.UnixMilli()-c.snapshot.Timestamp < c.ttl.Milliseconds() {
		if c.metrics != nil {
			c.metrics.CacheHits.Inc()
		}
		return c.snapshot.Price
	}

	if c.metrics != nil {
		c.metrics.Fetches.Inc()
	}
	price, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if c.metrics != nil {
			c.metrics.FetchFailures.Inc()
			c.metrics.Fallbacks.Inc()
		}

		if c.snapshot != nil {
			// Serve stale, keep the old timestamp so staleness stays visible.
			c.log.Warn("gold feed fetch failed, serving stale snapshot", zap.Error(err))
			return c.snapshot.Price
		}

		mock := mockPrice()
		c.log.Warn("gold feed fetch failed with no snapshot, serving mock price",
			zap.Error(err),
			zap.Float64("price", mock),
		)
		return mock
	}

	c.snapshot = &Snapshot{Price: price, Timestamp: now.UnixMilli()}
	return price
}

// CachedSnapshot returns the current snapshot without side effects. It
// never triggers a fetch.
func (c *Cache) CachedSnapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// ForceRefresh drops the snapshot so the next Price call bypasses the TTL
// check. It does not fetch.
func (c *Cache) ForceRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}

func mockPrice() float64 {
	v := mockBasePrice + (rand.Float64()-0.5)*2
	return math.Round(v*100) / 100
}
