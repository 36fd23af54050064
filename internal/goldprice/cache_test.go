package goldprice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	price float64
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

func newTestCache(f Fetcher) *Cache {
	return NewCache(f, 5*time.Minute, nil, zap.NewNop())
}

func TestPriceServesFromFreshSnapshot(t *testing.T) {
	f := &fakeFetcher{price: 70.5}
	c := newTestCache(f)

	base := time.Now()
	c.now = func() time.Time { return base }

	require.Equal(t, 70.5, c.Price(context.Background()))
	first, ok := c.CachedSnapshot()
	require.True(t, ok)

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	require.Equal(t, 70.5, c.Price(context.Background()))

	second, ok := c.CachedSnapshot()
	require.True(t, ok)

	require.Equal(t, 1, f.calls, "second read within TTL must not fetch")
	require.Equal(t, first, second, "snapshot must be untouched by a cache hit")
}

func TestPriceRefetchesAfterTTL(t *testing.T) {
	f := &fakeFetcher{price: 70.5}
	c := newTestCache(f)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Price(context.Background())

	f.price = 71.0
	c.now = func() time.Time { return base.Add(5*time.Minute + time.Millisecond) }

	require.Equal(t, 71.0, c.Price(context.Background()))
	require.Equal(t, 2, f.calls)

	snap, ok := c.CachedSnapshot()
	require.True(t, ok)
	require.Equal(t, 71.0, snap.Price)
	require.Equal(t, base.Add(5*time.Minute+time.Millisecond).UnixMilli(), snap.Timestamp)
}

func TestPriceMockFallbackWithoutSnapshot(t *testing.T) {
	f := &fakeFetcher{err: errors.New("feed down")}
	c := newTestCache(f)

	price := c.Price(context.Background())

	require.GreaterOrEqual(t, price, 64.0)
	require.LessOrEqual(t, price, 66.0)
	require.Equal(t, 1, f.calls)

	_, ok := c.CachedSnapshot()
	require.False(t, ok, "a mock price must not become a snapshot")
}

func TestPriceServesStaleSnapshotOnError(t *testing.T) {
	f := &fakeFetcher{price: 68.2}
	c := newTestCache(f)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Price(context.Background())

	f.err = errors.New("feed down")
	c.now = func() time.Time { return base.Add(10 * time.Minute) }

	require.Equal(t, 68.2, c.Price(context.Background()))
	require.Equal(t, 2, f.calls)

	snap, ok := c.CachedSnapshot()
	require.True(t, ok)
	require.Equal(t, base.UnixMilli(), snap.Timestamp, "serving stale must not refresh the timestamp")
}

func TestForceRefreshBypassesTTL(t *testing.T) {
	f := &fakeFetcher{price: 70.5}
	c := newTestCache(f)

	c.Price(context.Background())
	require.Equal(t, 1, f.calls)

	c.ForceRefresh()
	_, ok := c.CachedSnapshot()
	require.False(t, ok, "force refresh drops the snapshot without fetching")
	require.Equal(t, 1, f.calls)

	c.Price(context.Background())
	require.Equal(t, 2, f.calls)
}

type slowFetcher struct {
	price float64
	delay time.Duration
	calls atomic.Int32
}

func (f *slowFetcher) Fetch(_ context.Context) (float64, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	return f.price, nil
}

func TestConcurrentPriceReadsFetchOnce(t *testing.T) {
	f := &slowFetcher{price: 70.0, delay: 50 * time.Millisecond}
	c := newTestCache(f)

	const readers = 10
	prices := make([]float64, readers)

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prices[i] = c.Price(context.Background())
		}(i)
	}
	wg.Wait()

	for _, p := range prices {
		require.Equal(t, 70.0, p, "every caller shares the winning fetch's price")
	}
	require.Equal(t, int32(1), f.calls.Load(), "concurrent callers of an empty cache must trigger one fetch")

	snap, ok := c.CachedSnapshot()
	require.True(t, ok)
	require.Equal(t, 70.0, snap.Price)
}

func TestCachedSnapshotNeverFetches(t *testing.T) {
	f := &fakeFetcher{price: 70.5}
	c := newTestCache(f)

	_, ok := c.CachedSnapshot()
	require.False(t, ok)
	require.Equal(t, 0, f.calls)
}
