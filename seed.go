package sitepress

import (
	"context"
	"fmt"
)

// Seed fills an empty database with a demo site: one author, a few
// categories, tags, posts, and an "About" page. It refuses to run when
// any users, categories, tags, posts or pages exist, and writes everything
// in one transaction.
func Seed(ctx context.Context, store *Store) error {
	return store.WithTx(ctx, func(tx *Store) error {
		return seed(ctx, tx)
	})
}

func seed(ctx context.Context, store *Store) error {
	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("seed: %w", ErrNotEmpty)
	}

	author, err := store.CreateUser(ctx, User{Username: "editor", FirstName: "Ana", LastName: "Souza"})
	if err != nil {
		return err
	}

	categories := make(map[string]Category)
	for _, name := range []string{"Go", "Web", "Notas"} {
		c, err := store.CreateCategory(ctx, Category{Name: name})
		if err != nil {
			return err
		}
		categories[name] = c
	}

	tags := make(map[string]Tag)
	for _, name := range []string{"sqlite", "echo", "templates", "performance"} {
		t, err := store.CreateTag(ctx, Tag{Name: name})
		if err != nil {
			return err
		}
		tags[name] = t
	}

	posts := []struct {
		title, category string
		tags            []string
	}{
		{"Hello, sitepress", "Notas", nil},
		{"Storing posts in SQLite", "Go", []string{"sqlite"}},
		{"Routing with Echo", "Web", []string{"echo"}},
		{"Templates without codegen", "Web", []string{"templates"}},
		{"Paginating listings", "Go", []string{"sqlite", "performance"}},
		{"Searching without an index", "Go", []string{"sqlite", "performance"}},
		{"Caching site settings", "Go", []string{"performance"}},
		{"Writing RSS feeds", "Web", nil},
		{"Sitemaps for crawlers", "Web", nil},
		{"Favicons at 32 pixels", "Notas", nil},
		{"Graceful shutdown", "Go", []string{"echo"}},
	}
	for _, p := range posts {
		cat := categories[p.category]
		post := Post{
			Title:       p.title,
			Excerpt:     "A short note about " + p.title + ".",
			Content:     "## " + p.title + "\n\nThis is demo content written by `sitepress seed`.",
			IsPublished: true,
			CreatedBy:   &author,
			Category:    &cat,
		}
		for _, name := range p.tags {
			post.Tags = append(post.Tags, tags[name])
		}
		if _, err := store.CreatePost(ctx, post); err != nil {
			return err
		}
	}

	if _, err := store.CreatePost(ctx, Post{
		Title:     "Draft in progress",
		Excerpt:   "Not published yet.",
		Content:   "Drafts never show up in listings.",
		CreatedBy: &author,
	}); err != nil {
		return err
	}

	if _, err := store.CreatePage(ctx, Page{
		Title:       "About",
		Content:     "This site is powered by **sitepress**.",
		IsPublished: true,
	}); err != nil {
		return err
	}

	site := DefaultSiteSetup()
	site.Title = "sitepress"
	site.Description = "A small blog engine"
	site.Menu = []MenuLink{
		{Text: "Home", URLOrPath: "/"},
		{Text: "About", URLOrPath: "/page/about/"},
		{Text: "Source", URLOrPath: "https://github.com/eringen/sitepress", NewTab: true},
	}
	_, err = store.SaveSiteSetup(ctx, site)
	return err
}
