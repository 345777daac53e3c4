package sitepress

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func buildSitemap(base string, posts []PostLink, pages []Page) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, p := range pages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "page", p.Slug)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "post", p.Slug),
			LastMod: p.UpdatedAt.Format("2006-01-02"),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []PostLink, pages []Page) error {
	sitemap := buildSitemap(a.Config.URL, posts, pages)
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
