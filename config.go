package sitepress

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// SiteConfig holds all configuration for a sitepress site. Values come from
// SITEPRESS_* environment variables via LoadConfig, or are set directly when
// the App is built in code.
type SiteConfig struct {
	URL          string `env:"SITEPRESS_URL" envDefault:"http://localhost:3000"` // Canonical URL
	Addr         string `env:"SITEPRESS_ADDR" envDefault:":3000"`
	DatabasePath string `env:"SITEPRESS_DATABASE_PATH" envDefault:"data/blog.db"`
	StaticDir    string `env:"SITEPRESS_STATIC_DIR" envDefault:"public"`
	Env          string `env:"SITEPRESS_ENV" envDefault:"development"`

	LogLevel  string `env:"SITEPRESS_LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"SITEPRESS_LOG_FORMAT" envDefault:"text"` // text or json

	SiteCacheTTL time.Duration `env:"SITEPRESS_SITE_CACHE_TTL" envDefault:"5m"`
	CacheRefresh string        `env:"SITEPRESS_CACHE_REFRESH"` // cron spec, e.g. "@every 5m"
	RedisURL     string        `env:"SITEPRESS_REDIS_URL"`     // optional shared cache
	CachePrefix  string        `env:"SITEPRESS_CACHE_PREFIX" envDefault:"sitepress:"`

	SearchRatePerMinute int `env:"SITEPRESS_SEARCH_RATE" envDefault:"30"`
	SearchBurst         int `env:"SITEPRESS_SEARCH_BURST" envDefault:"10"`

	FeedSize        int           `env:"SITEPRESS_FEED_SIZE" envDefault:"20"`
	ShutdownTimeout time.Duration `env:"SITEPRESS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig parses the environment into a SiteConfig.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.setDefaults()
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return SiteConfig{}, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return SiteConfig{}, fmt.Errorf("SITEPRESS_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// IsDevelopment reports whether the site runs in development mode.
func (c SiteConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// UseRedisCache reports whether a Redis URL is configured.
func (c SiteConfig) UseRedisCache() bool {
	return c.RedisURL != ""
}

func (c *SiteConfig) setDefaults() {
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.SiteCacheTTL == 0 {
		c.SiteCacheTTL = 5 * time.Minute
	}
	if c.CachePrefix == "" {
		c.CachePrefix = "sitepress:"
	}
	if c.SearchRatePerMinute == 0 {
		c.SearchRatePerMinute = 30
	}
	if c.SearchBurst == 0 {
		c.SearchBurst = 10
	}
	if c.FeedSize == 0 {
		c.FeedSize = 20
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore makes the App use an already opened Store instead of opening
// SiteConfig.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithSiteCacheBackend overrides the site cache backend (memory by default,
// Redis when SiteConfig.RedisURL is set).
func WithSiteCacheBackend(b CacheBackend) Option {
	return func(a *App) {
		a.cacheBackend = b
	}
}

// WithLogger sets the logger used for request logs and background jobs.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
