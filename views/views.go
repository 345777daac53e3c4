// Package views provides the default HTML views for sitepress. Templates are
// plain html/template files embedded in the binary and exposed as templ
// components, so a site can swap any of them for its own templ components.
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/sitepress"
	"github.com/eringen/sitepress/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"markdown": func(content string) (template.HTML, error) {
		out, err := markdown.ToHTML(content)
		return template.HTML(out), err
	},
	"jsonld": func(s string) template.JS {
		return template.JS(s)
	},
	"year": func() int {
		return time.Now().Year()
	},
}

var (
	listingTmpl  = mustParse("listing.html")
	postTmpl     = mustParse("post.html")
	pageTmpl     = mustParse("page.html")
	notFoundTmpl = mustParse("notfound.html")
	errorTmpl    = mustParse("error.html")
)

// mustParse builds the base layout with one content template.
func mustParse(page string) *template.Template {
	return template.Must(template.New("base.html").Funcs(funcs).
		ParseFS(templateFS, "templates/base.html", "templates/"+page))
}

// Default returns the built-in view set.
func Default() sitepress.ViewFuncs {
	return sitepress.ViewFuncs{
		Listing:     Listing,
		Post:        Post,
		Page:        Page,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Listing renders the home, author, category, tag and search listings.
func Listing(data sitepress.ListingPage) templ.Component {
	return templ.FromGoHTML(listingTmpl, data)
}

// Post renders a post detail view.
func Post(data sitepress.PostPage) templ.Component {
	return templ.FromGoHTML(postTmpl, data)
}

// Page renders a page detail view.
func Page(data sitepress.PagePage) templ.Component {
	return templ.FromGoHTML(pageTmpl, data)
}

// NotFound renders the 404 page.
func NotFound(frame sitepress.Frame) templ.Component {
	frame.PageTitle = "Not found - "
	return templ.FromGoHTML(notFoundTmpl, frame)
}

// ServerError renders the 500 page.
func ServerError(frame sitepress.Frame) templ.Component {
	frame.PageTitle = "Error - "
	return templ.FromGoHTML(errorTmpl, frame)
}
