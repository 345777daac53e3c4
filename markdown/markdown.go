// Package markdown renders post and page content to sanitised HTML.
//
// Content is Markdown; raw HTML blocks are accepted so content pasted from a
// rich-text editor still renders. Output always passes through a UGC
// sanitising policy.
package markdown

import (
	"bytes"
	"context"
	"io"
	"regexp"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[\w-]+$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// ToHTML converts content to sanitised HTML.
func ToHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}

// Markdown returns a templ.Component that renders content as sanitised HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := ToHTML(content)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Sanitize strips unsafe markup from an HTML fragment without Markdown
// processing.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}
