package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string

	SerpAPIKey      string
	SerpAPIEndpoint string
	ProviderTimeout time.Duration

	DefaultGeolocation string
	DefaultPages       int
	MaxPages           int
	PageDelay          time.Duration
	ScanTimeout        time.Duration

	RescanInterval time.Duration
	RescanBrands   []string
	RescanWorkers  int
}

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after merging a .env file when one exists.
// Values in the real environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                getenv("APP_ENV", "development"),
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SerpAPIKey:         os.Getenv("SERPAPI_KEY"),
		SerpAPIEndpoint:    getenv("SERPAPI_ENDPOINT", "https://serpapi.com/search.json"),
		ProviderTimeout:    getenvDuration("SEARCH_PROVIDER_TIMEOUT", 30*time.Second),
		DefaultGeolocation: getenv("SEARCH_DEFAULT_GEO", "United Kingdom"),
		DefaultPages:       getenvInt("SCAN_DEFAULT_PAGES", 3),
		MaxPages:           getenvInt("SCAN_MAX_PAGES", 10),
		PageDelay:          getenvDuration("SCAN_PAGE_DELAY", time.Second),
		ScanTimeout:        getenvDuration("SCAN_TIMEOUT", 5*time.Minute),
		RescanInterval:     getenvDuration("RESCAN_INTERVAL", 0),
		RescanBrands:       getenvList("RESCAN_BRANDS"),
		RescanWorkers:      getenvInt("RESCAN_WORKERS", 1),
	}
	if cfg.DefaultPages < 1 || cfg.MaxPages < cfg.DefaultPages {
		return cfg, fmt.Errorf("SCAN_DEFAULT_PAGES=%d must be between 1 and SCAN_MAX_PAGES=%d", cfg.DefaultPages, cfg.MaxPages)
	}
	if cfg.DatabaseURL == "" && cfg.Production() {
		return cfg, fmt.Errorf("DATABASE_URL is required when APP_ENV=production")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
