package catalog

// Images maps each finish variant to its image URL.
type Images struct {
	Yellow string `json:"yellow"`
	Rose   string `json:"rose"`
	White  string `json:"white"`
}

// Product is one catalog entry as it appears in the static dataset.
type Product struct {
	Name            string  `json:"name"`
	PopularityScore float64 `json:"popularityScore"`
	Weight          float64 `json:"weight"` // grams
	Images          Images  `json:"images"`
}

// GoldPrice is the feed value a product's price was derived from.
type GoldPrice struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Timestamp int64   `json:"timestamp"`
}

// PricedProduct is a Product annotated with its current market price.
// Recomputed on every query, never stored.
type PricedProduct struct {
	Product
	CurrentPrice float64   `json:"currentPrice"`
	StarRating   float64   `json:"starRating"`
	GoldPrice    GoldPrice `json:"goldPrice"`
}

// Stats aggregates the full unfiltered catalog.
type Stats struct {
	TotalProducts int     `json:"totalProducts"`
	AvgPrice      float64 `json:"avgPrice"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
	AvgPopularity float64 `json:"avgPopularity"`
}

// PriceInfo is the shape of the gold price endpoint.
type PriceInfo struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Unit      string  `json:"unit"`
	Timestamp int64   `json:"timestamp"`
	Cached    bool    `json:"cached"`
}

const (
	SortByName       = "name"
	SortByPrice      = "price"
	SortByPopularity = "popularity"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Filters are the optional, conjunctive query parameters. Nil bounds are
// inactive; bounds are inclusive.
type Filters struct {
	MinPrice      *float64
	MaxPrice      *float64
	MinPopularity *float64
	MaxPopularity *float64
	Search        string
	SortBy        string
	SortOrder     string
}
