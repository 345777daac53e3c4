package sitepress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textViews renders just enough of each page to assert on.
func textViews() ViewFuncs {
	page := func(kind string, f Frame, body string) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<title>%s%s</title>\n[%s]\n%s", f.PageTitle, f.Site.Title, kind, body)
			return err
		})
	}
	return ViewFuncs{
		Listing: func(p ListingPage) templ.Component {
			return page("listing", p.Frame, strings.Join(postTitles(p.Listing.Posts), "|"))
		},
		Post: func(p PostPage) templ.Component {
			return page("post", p.Frame, p.Post.Content)
		},
		Page: func(p PagePage) templ.Component {
			return page("page", p.Frame, p.Page.Content)
		},
		NotFound: func(f Frame) templ.Component {
			return page("notfound", f, "")
		},
		ServerError: func(f Frame) templ.Component {
			return page("error", f, "")
		},
	}
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) (*App, fixture) {
	t.Helper()
	s := newTestStore(t)
	f := newFixture(t, s)
	if cfg.URL == "" {
		cfg.URL = "http://example.com"
	}
	cfg.StaticDir = t.TempDir()
	opts = append([]Option{
		WithStore(s),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	a := New(cfg, textViews(), opts...)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })
	return a, f
}

func get(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestListingRoutes(t *testing.T) {
	a, f := newTestApp(t, SiteConfig{})

	tests := []struct {
		name      string
		target    string
		wantTitle string
		wantBody  string
	}{
		{"home", "/", "Home - Blog", "Third post|Second post|First post"},
		{"home last page", "/?page=last", "Home - Blog", "Third post|Second post|First post"},
		{"author", fmt.Sprintf("/created_by/%d/", f.ana.ID), "Posts de Ana Souza - Blog", "Third post|Second post|First post"},
		{"author without posts", fmt.Sprintf("/created_by/%d/", f.bob.ID), "Posts de bob - Blog", "[listing]"},
		{"category", "/category/go/", "Go - Categoria - Blog", "Third post|First post"},
		{"tag", "/tag/acao/", "Ação - Tag - Blog", "Third post"},
		{"search", "/search/?search=mundo", "mundo - Search - Blog", "First post"},
		{"search no results", "/search/?search=zzz", "zzz - Search - Blog", "[listing]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(a, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "<title>"+tt.wantTitle+"</title>")
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
		})
	}
}

func TestNotFoundRoutes(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	for _, target := range []string{
		"/?page=2",
		"/?page=0",
		"/?page=abc",
		"/created_by/999/",
		"/created_by/not-a-number/",
		"/category/empty/",
		"/category/missing/",
		"/category/go/?page=2",
		"/tag/unused/",
		"/search/?search=post&page=2",
		"/post/hidden-draft/",
		"/post/missing/",
		"/page/draft-page/",
		"/no/such/route/",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(a, target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "[notfound]")
		})
	}
}

func TestEmptySearchRedirectsHome(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	for _, target := range []string{"/search/", "/search/?search=", "/search/?search=%20%20%20"} {
		rec := get(a, target)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation), target)
	}
}

func TestDetailRoutes(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/post/first-post/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>First post - Blog</title>")
	assert.Contains(t, rec.Body.String(), "Olá MUNDO")

	rec = get(a, "/page/about/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>About - Blog</title>")
}

func TestTrailingSlashRedirect(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/category/go")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/category/go/", rec.Header().Get(echo.HeaderLocation))

	rec = get(a, "/search?search=go")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/search/?search=go", rec.Header().Get(echo.HeaderLocation))
}

func TestSiteSetupTitle(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})
	ctx := context.Background()

	ss := DefaultSiteSetup()
	ss.Title = "My site"
	_, err := a.Store.SaveSiteSetup(ctx, ss)
	require.NoError(t, err)
	require.NoError(t, a.SiteCache.Invalidate(ctx))

	rec := get(a, "/")
	assert.Contains(t, rec.Body.String(), "<title>Home - My site</title>")
}

func TestSearchRateLimit(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{SearchRatePerMinute: 1, SearchBurst: 2})

	assert.Equal(t, http.StatusOK, get(a, "/search/?search=post").Code)
	assert.Equal(t, http.StatusOK, get(a, "/search/?search=post").Code)
	rec := get(a, "/search/?search=post")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Blank searches redirect regardless of the limit.
	assert.Equal(t, http.StatusFound, get(a, "/search/?search=").Code)
}

func TestServerErrorRendersErrorView(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{}, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/boom/", func(c echo.Context) error {
			return errors.New("boom")
		})
	}))

	rec := get(a, "/boom/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "[error]")
}

func TestFeed(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")
	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "<item>"))
	assert.Contains(t, body, "<link>http://example.com/post/third-post/</link>")
	assert.NotContains(t, body, "hidden-draft")
}

func TestFeedSize(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{FeedSize: 2})

	rec := get(a, "/feed.xml")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<item>"))
}

func TestSitemap(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>http://example.com</loc>")
	assert.Contains(t, body, "<loc>http://example.com/page/about/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/post/first-post/</loc>")
	assert.NotContains(t, body, "hidden-draft")
	assert.NotContains(t, body, "draft-page")
}

func TestSitemapManyPosts(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})
	insertBulkPosts(t, a.Store, 33000)

	rec := get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>http://example.com/post/bulk-33000/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/post/bulk-1/</loc>")
	assert.Equal(t, 1+1+3+33000, strings.Count(body, "<url>"))
}

func TestRobots(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://example.com/sitemap.xml")
}

func TestHealth(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.NoError(t, a.Store.Close())
	rec = get(a, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResponseHeaders(t *testing.T) {
	a, _ := newTestApp(t, SiteConfig{})

	rec := get(a, "/")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	rec = get(a, "/search/?search=post")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
