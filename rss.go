package sitepress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

func buildRSS(site SiteSetup, base string, posts []Post) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "post", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        postURL,
		}
		if p.CreatedBy != nil {
			item.Author = p.CreatedBy.DisplayName()
		}
		if p.Category != nil {
			item.Categories = append(item.Categories, p.Category.Name)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        BuildURL(base),
			Description: site.Description,
			Items:       items,
		},
	}
	if len(posts) > 0 {
		feed.Channel.LastBuildDate = posts[0].UpdatedAt.Format(time.RFC1123Z)
	}
	return feed
}

func (a *App) renderRSS(c echo.Context, site SiteSetup, posts []Post) error {
	feed := buildRSS(site, a.Config.URL, posts)
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
