package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"GoldStore/internal/catalog"
	"GoldStore/internal/config"
	"GoldStore/internal/goldprice"
	"GoldStore/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	registry := prometheus.NewRegistry()

	feed := goldprice.NewClient(cfg.GoldAPIURL, cfg.GoldAPIKey, cfg.GoldCurrency, cfg.FetchTimeout, log)
	gold := goldprice.NewCache(feed, cfg.CacheTTL, goldprice.NewMetrics(registry), log)

	engine := catalog.NewEngine(catalog.NewFileSource(cfg.ProductsPath), gold, log)
	s := &catalog.Server{Engine: engine, Log: log}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:      log,
		Service:  service,
		Registry: registry,

		CORSOrigins: cfg.CORSOrigins,

		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,

		RateLimit:         cfg.RateLimit,
		RateWindowSeconds: cfg.RateWindowSeconds,
	})

	if err := kit.RunHTTPServer(fmt.Sprintf(":%d", cfg.Port), h, cfg.ShutdownTimeout, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
