package catalog

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"GoldStore/internal/goldprice"
)

// Engine turns the static catalog plus the current gold price into a
// filtered, sorted result set.
type Engine struct {
	Source Source
	Gold   *goldprice.Cache
	Log    *zap.Logger
}

func NewEngine(src Source, gold *goldprice.Cache, log *zap.Logger) *Engine {
	return &Engine{Source: src, Gold: gold, Log: log}
}

// Query loads the catalog and the gold price concurrently, derives each
// item's current price, then filters and sorts. The catalog is never
// mutated; the gold price read never fails (the cache absorbs feed errors).
func (e *Engine) Query(ctx context.Context, f Filters) ([]PricedProduct, error) {
	var (
		products []Product
		price    float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = e.Source.Load(gctx)
		return err
	})
	g.Go(func() error {
		price = e.Gold.Price(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gold := GoldPrice{Price: price, Currency: "USD", Timestamp: snapshotTimestamp(e.Gold)}

	priced := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		priced = append(priced, PricedProduct{
			Product:      p,
			CurrentPrice: round2((p.PopularityScore + 1) * p.Weight * price),
			StarRating:   round1(p.PopularityScore * 5),
			GoldPrice:    gold,
		})
	}

	priced = applyFilters(priced, f)
	sortProducts(priced, f.SortBy, f.SortOrder)
	return priced, nil
}

// ByIndex looks up a position in the unfiltered, default-sorted result.
// The index is an array position, not a stable identifier: it shifts
// whenever prices or popularity reorder the default sort.
func (e *Engine) ByIndex(ctx context.Context, i int) (PricedProduct, bool, error) {
	items, err := e.Query(ctx, Filters{})
	if err != nil {
		return PricedProduct{}, false, err
	}
	if i < 0 || i >= len(items) {
		return PricedProduct{}, false, nil
	}
	return items[i], true, nil
}

// Stats aggregates the full unfiltered catalog. An empty catalog yields
// zeroed stats, not an error.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	items, err := e.Query(ctx, Filters{})
	if err != nil {
		return Stats{}, err
	}
	if len(items) == 0 {
		return Stats{}, nil
	}

	minPrice := items[0].CurrentPrice
	maxPrice := items[0].CurrentPrice
	var priceSum, popSum float64
	for _, it := range items {
		priceSum += it.CurrentPrice
		popSum += it.PopularityScore
		if it.CurrentPrice < minPrice {
			minPrice = it.CurrentPrice
		}
		if it.CurrentPrice > maxPrice {
			maxPrice = it.CurrentPrice
		}
	}

	n := float64(len(items))
	return Stats{
		TotalProducts: len(items),
		AvgPrice:      round2(priceSum / n),
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		AvgPopularity: round2(popSum / n),
	}, nil
}

// CurrentPrice reads the gold price and reports whether it came from a
// snapshot.
func (e *Engine) CurrentPrice(ctx context.Context) PriceInfo {
	price := e.Gold.Price(ctx)
	snap, ok := e.Gold.CachedSnapshot()

	ts := snap.Timestamp
	if !ok {
		ts = time.Now().UnixMilli()
	}

	return PriceInfo{
		Price:     price,
		Currency:  "USD",
		Unit:      "gram",
		Timestamp: ts,
		Cached:    ok,
	}
}

// RefreshPrice invalidates the snapshot and reads a fresh price. The
// result always reports cached=false: the caller just forced a read past
// the cache, even though the refetch seeds a new snapshot.
func (e *Engine) RefreshPrice(ctx context.Context) PriceInfo {
	e.Gold.ForceRefresh()

	info := e.CurrentPrice(ctx)
	info.Cached = false
	return info
}

// Ping reports whether the catalog dataset is loadable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.Source.Ping(ctx)
}

func snapshotTimestamp(gold *goldprice.Cache) int64 {
	if snap, ok := gold.CachedSnapshot(); ok {
		return snap.Timestamp
	}
	// Mock fallback with no snapshot; the price is only valid right now.
	return time.Now().UnixMilli()
}

func applyFilters(items []PricedProduct, f Filters) []PricedProduct {
	out := make([]PricedProduct, 0, len(items))
	search := strings.ToLower(f.Search)

	for _, it := range items {
		if f.MinPrice != nil && it.CurrentPrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && it.CurrentPrice > *f.MaxPrice {
			continue
		}
		if f.MinPopularity != nil && it.PopularityScore < *f.MinPopularity {
			continue
		}
		if f.MaxPopularity != nil && it.PopularityScore > *f.MaxPopularity {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func sortProducts(items []PricedProduct, sortBy, sortOrder string) {
	var cmp func(a, b PricedProduct) int

	switch sortBy {
	case SortByName:
		col := collate.New(language.English)
		cmp = func(a, b PricedProduct) int { return col.CompareString(a.Name, b.Name) }
	case SortByPrice:
		cmp = func(a, b PricedProduct) int { return compareFloat(a.CurrentPrice, b.CurrentPrice) }
	default:
		// Unrecognized sortBy values fall back to popularity.
		cmp = func(a, b PricedProduct) int { return compareFloat(a.PopularityScore, b.PopularityScore) }
	}

	desc := sortOrder != SortAsc
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
