package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestToHTMLInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"~~gone~~", "<del>gone</del>"},
	}
	for _, tt := range tests {
		got, err := ToHTML(tt.input)
		if err != nil {
			t.Fatalf("ToHTML(%q) error: %v", tt.input, err)
		}
		if !strings.Contains(got, tt.expected) {
			t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestToHTMLCodeBlockWithLanguage(t *testing.T) {
	got, err := ToHTML("```go\nfmt.Println(1)\n```")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("language class dropped: %q", got)
	}
	if !strings.Contains(got, "fmt.Println(1)") {
		t.Errorf("code content missing: %q", got)
	}
}

func TestToHTMLHeadingIDs(t *testing.T) {
	got, err := ToHTML("## Getting started")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<h2 id="getting-started">`) {
		t.Errorf("heading id missing: %q", got)
	}
}

func TestToHTMLTable(t *testing.T) {
	got, err := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestToHTMLKeepsRawHTML(t *testing.T) {
	got, err := ToHTML("<p>Hello <b>world</b></p>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<b>world</b>") {
		t.Errorf("raw HTML dropped: %q", got)
	}
}

func TestToHTMLStripsScripts(t *testing.T) {
	tests := []string{
		"<script>alert(1)</script>",
		`<img src="x" onerror="alert(1)">`,
		`[click](javascript:alert(1))`,
	}
	for _, input := range tests {
		got, err := ToHTML(input)
		if err != nil {
			t.Fatal(err)
		}
		for _, bad := range []string{"<script", "onerror", "javascript:"} {
			if strings.Contains(got, bad) {
				t.Errorf("ToHTML(%q) = %q, contains %q", input, got, bad)
			}
		}
	}
}

func TestToHTMLExternalLinksOpenInNewTab(t *testing.T) {
	got, err := ToHTML("[site](https://example.com)")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("external link missing target: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("# Title").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Title</h1>") {
		t.Errorf("component output = %q", buf.String())
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(`<a href="/x" onclick="evil()">x</a>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("Sanitize kept handler: %q", got)
	}
	if !strings.Contains(got, `href="/x"`) {
		t.Errorf("Sanitize dropped href: %q", got)
	}
}
