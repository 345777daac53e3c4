// Package sitepress is a small blog engine built with Go, Echo, and templ.
// It serves published posts and pages from SQLite through listing and
// detail views, with search, RSS, and a sitemap.
//
// Sites provide their own templ components via the ViewFuncs struct, and
// sitepress handles the handler logic, middleware, and database access.
package sitepress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
)

// Frame is the data every rendered page shares: the site setup, the title
// prefix, and the head metadata.
type Frame struct {
	Site        SiteSetup
	SiteURL     string
	PageTitle   string
	SearchValue string
	Meta        PageMeta
	JSONLD      string
}

// ListingPage is the view data for the home, author, category, tag, and
// search listings.
type ListingPage struct {
	Frame
	Listing Listing
}

// PostPage is the view data for a post detail.
type PostPage struct {
	Frame
	Post Post
}

// PagePage is the view data for a page detail.
type PagePage struct {
	Frame
	Page Page
}

// ViewFuncs holds the components the App renders. A site can replace any of
// them with its own templ components.
type ViewFuncs struct {
	Listing     func(ListingPage) templ.Component
	Post        func(PostPage) templ.Component
	Page        func(PagePage) templ.Component
	NotFound    func(Frame) templ.Component
	ServerError func(Frame) templ.Component
}

// App is the central sitepress application. It wires together the store,
// caches, handlers, middleware, and views.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Blog      *Blog
	SiteCache *SiteCache
	Views     ViewFuncs
	Logger    *slog.Logger

	customRoutes  []func(*App)
	cacheBackend  CacheBackend
	searchLimiter *SearchLimiter
	cron          *cron.Cron
	ownsStore     bool
	initialized   bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  views,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and caches and registers middleware and routes. It
// is called by Start; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("sitepress: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	if a.cacheBackend == nil {
		if a.Config.UseRedisCache() {
			rc, err := NewRedisCache(ctx, a.Config.RedisURL, a.Config.CachePrefix)
			if err != nil {
				return fmt.Errorf("sitepress: init redis cache: %w", err)
			}
			a.cacheBackend = rc
		} else {
			a.cacheBackend = NewMemoryCache()
		}
	}

	a.SiteCache = NewSiteCache(a.cacheBackend, a.Store, a.Config.SiteCacheTTL, a.Logger)
	a.Blog = NewBlog(a.Store)
	a.searchLimiter = NewSearchLimiter(a.Config.SearchRatePerMinute, a.Config.SearchBurst, 10*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the App and serves until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Init(ctx); err != nil {
		return err
	}
	defer a.Close()

	if err := a.startScheduler(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", "addr", a.Config.Addr, "url", a.Config.URL, "env", a.Config.Env)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sitepress: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/created_by/:author/", a.handleAuthor)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/tag/:slug/", a.handleTag)
	e.GET("/search/", a.handleSearch)
	e.GET("/page/:slug/", a.handlePage)
	e.GET("/post/:slug/", a.handlePost)
}

// Close releases the scheduler, limiter, cache backend, and the store when
// the App opened it.
func (a *App) Close() error {
	a.stopScheduler()
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	var errs []error
	if a.cacheBackend != nil {
		errs = append(errs, a.cacheBackend.Close())
	}
	if a.Store != nil && a.ownsStore {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
