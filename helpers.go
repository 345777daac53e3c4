package sitepress

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Slugify converts a title to a URL-safe slug. Accented and non-Latin
// characters are transliterated first, so "Ação rápida" becomes "acao-rapida".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site SiteSetup, baseURL string) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Title,
		"url":      BuildURL(baseURL),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(baseURL, "search") + "?search={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post Post, site SiteSetup, baseURL string) string {
	postURL := BuildURL(baseURL, "post", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.CreatedAt.Format("2006-01-02"),
		"dateModified":  post.UpdatedAt.Format("2006-01-02"),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		},
	}
	if post.CreatedBy != nil {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.CreatedBy.DisplayName(),
		}
	}
	if len(post.Tags) > 0 {
		names := make([]string, len(post.Tags))
		for i, t := range post.Tags {
			names[i] = t.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
