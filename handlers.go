package sitepress

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	listing, err := a.Blog.Home(c.Request().Context(), c.QueryParam("page"))
	if err != nil {
		return a.viewError(c, err)
	}
	return a.renderListing(c, listing)
}

func (a *App) handleAuthor(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("author"), 10, 64)
	if err != nil {
		return echo.ErrNotFound
	}
	listing, err := a.Blog.ByAuthor(c.Request().Context(), id, c.QueryParam("page"))
	if err != nil {
		return a.viewError(c, err)
	}
	return a.renderListing(c, listing)
}

func (a *App) handleCategory(c echo.Context) error {
	listing, err := a.Blog.ByCategory(c.Request().Context(), c.Param("slug"), c.QueryParam("page"))
	if err != nil {
		return a.viewError(c, err)
	}
	return a.renderListing(c, listing)
}

func (a *App) handleTag(c echo.Context) error {
	listing, err := a.Blog.ByTag(c.Request().Context(), c.Param("slug"), c.QueryParam("page"))
	if err != nil {
		return a.viewError(c, err)
	}
	return a.renderListing(c, listing)
}

func (a *App) handleSearch(c echo.Context) error {
	term := c.QueryParam("search")
	if strings.TrimSpace(term) != "" && !a.searchLimiter.Allow(c.RealIP()) {
		return a.viewError(c, ErrRateLimited)
	}
	listing, err := a.Blog.Search(c.Request().Context(), term, c.QueryParam("page"))
	if err != nil {
		return a.viewError(c, err)
	}
	return a.renderListing(c, listing)
}

func (a *App) handlePost(c echo.Context) error {
	view, err := a.Blog.PostDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return a.viewError(c, err)
	}
	f := a.frame(c, view.PageTitle)
	f.Meta.OGType = "article"
	if view.Post.Excerpt != "" {
		f.Meta.Description = view.Post.Excerpt
	}
	f.JSONLD = BlogPostingJsonLD(view.Post, f.Site, a.Config.URL)
	return Render(c, a.Views.Post(PostPage{Frame: f, Post: view.Post}))
}

func (a *App) handlePage(c echo.Context) error {
	view, err := a.Blog.PageDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return a.viewError(c, err)
	}
	f := a.frame(c, view.PageTitle)
	return Render(c, a.Views.Page(PagePage{Frame: f, Page: view.Page}))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.PublishedPostLinks(ctx)
	if err != nil {
		return err
	}
	pages, err := a.Store.PublishedPages(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, pages)
}

func (a *App) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.PublishedPosts(ctx, PostQuery{}.Window(a.Config.FeedSize, 0))
	if err != nil {
		return err
	}
	return a.renderRSS(c, a.site(ctx), posts)
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		a.Logger.Warn("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// viewError maps Blog errors to responses. Anything unrecognized goes to
// the HTTP error handler as a server error.
func (a *App) viewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.ErrNotFound
	case errors.Is(err, ErrEmptySearch):
		return c.Redirect(http.StatusFound, "/")
	case errors.Is(err, ErrRateLimited):
		c.Response().Header().Set("Retry-After", "60")
		return c.String(http.StatusTooManyRequests, "Too many search requests")
	}
	return err
}

func (a *App) renderListing(c echo.Context, listing Listing) error {
	f := a.frame(c, listing.PageTitle)
	f.SearchValue = listing.SearchValue
	return Render(c, a.Views.Listing(ListingPage{Frame: f, Listing: listing}))
}

// site returns the cached site setup, falling back to the defaults so a
// failing cache or database still renders a page.
func (a *App) site(ctx context.Context) SiteSetup {
	if a.SiteCache == nil {
		return DefaultSiteSetup()
	}
	site, err := a.SiteCache.SiteSetup(ctx)
	if err != nil {
		a.Logger.Warn("site setup unavailable, using defaults", "error", err)
		return DefaultSiteSetup()
	}
	return site
}

func (a *App) frame(c echo.Context, title string) Frame {
	site := a.site(c.Request().Context())
	return Frame{
		Site:      site,
		SiteURL:   a.Config.URL,
		PageTitle: title,
		Meta: PageMeta{
			Description: site.Description,
			URL:         a.Config.URL + c.Request().URL.Path,
			OGType:      "website",
		},
		JSONLD: WebsiteJsonLD(site, a.Config.URL),
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.frame(c, "")))
	case code >= 500:
		a.Logger.Error("server error",
			"error", err,
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		_ = RenderStatus(c, code, a.Views.ServerError(a.frame(c, "")))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
