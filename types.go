package sitepress

import (
	"strings"
	"time"
)

// User is a post author. Users are managed outside sitepress and only read here.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns "first last" when a first name is set, else the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Category groups posts; every post belongs to at most one.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Tag labels posts; a post may carry many.
type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Post is the core content type stored in SQLite and rendered by templates.
type Post struct {
	ID          int64
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	IsPublished bool
	CreatedBy   *User
	Category    *Category
	Tags        []Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Link returns the site-relative URL of the post detail view.
func (p Post) Link() string {
	return "/post/" + p.Slug + "/"
}

// TagBySlug returns the post's tag with the given slug.
func (p Post) TagBySlug(slug string) (Tag, bool) {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return t, true
		}
	}
	return Tag{}, false
}

// PostLink is the part of a post a sitemap needs.
type PostLink struct {
	Slug      string
	UpdatedAt time.Time
}

// Page is a standalone published document such as "About".
type Page struct {
	ID          int64
	Title       string
	Slug        string
	Content     string
	IsPublished bool
}

// Link returns the site-relative URL of the page detail view.
func (p Page) Link() string {
	return "/page/" + p.Slug + "/"
}

// MenuLink is one entry of the site navigation menu.
type MenuLink struct {
	ID        int64
	Text      string
	URLOrPath string
	NewTab    bool
}

// IsExternal reports whether the link points off-site.
func (m MenuLink) IsExternal() bool {
	return strings.HasPrefix(m.URLOrPath, "http://") || strings.HasPrefix(m.URLOrPath, "https://")
}

// SiteSetup holds the site-wide presentation settings and the menu.
type SiteSetup struct {
	ID              int64
	Title           string
	Description     string
	ShowHeader      bool
	ShowSearch      bool
	ShowMenu        bool
	ShowDescription bool
	ShowPagination  bool
	ShowFooter      bool
	Favicon         string
	Menu            []MenuLink
}

// DefaultSiteSetup is used until a site_setup row exists.
func DefaultSiteSetup() SiteSetup {
	return SiteSetup{
		Title:           "Blog",
		ShowHeader:      true,
		ShowSearch:      true,
		ShowMenu:        true,
		ShowDescription: true,
		ShowPagination:  true,
		ShowFooter:      true,
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
