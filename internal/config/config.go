// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	ProductsPath    string

	GoldAPIURL   string
	GoldAPIKey   string
	GoldCurrency string
	CacheTTL     time.Duration
	FetchTimeout time.Duration

	CORSOrigins []string

	MetricsEnabled bool
	MetricsToken   string

	RateLimit         int
	RateWindowSeconds int
}

// Load reads configuration from environment variables, picking up a .env
// file first if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		ProductsPath:    getEnv("PRODUCTS_PATH", "products.json"),

		GoldAPIURL:   getEnv("GOLD_API_URL", "https://api.metalpriceapi.com/v1/latest"),
		GoldAPIKey:   getEnv("GOLD_API_KEY", ""),
		GoldCurrency: getEnv("GOLD_CURRENCY", "XAU"),
		CacheTTL:     time.Duration(getEnvAsInt("GOLD_CACHE_TTL_SECONDS", 300)) * time.Second,
		FetchTimeout: time.Duration(getEnvAsInt("GOLD_FETCH_TIMEOUT_SECONDS", 10)) * time.Second,

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		RateLimit:         getEnvAsInt("RATE_LIMIT", 0),
		RateWindowSeconds: getEnvAsInt("RATE_WINDOW_SECONDS", 60),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
