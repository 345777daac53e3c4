package sitepress

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixture is a small blog:
//
//	id 1 "First post"   published  category go   tag sqlite
//	id 2 "Second post"  published  category web
//	id 3 "Hidden draft" draft      category go   tag acao
//	id 4 "Third post"   published  category go   tag acao, sqlite
type fixture struct {
	ana, bob      User
	goCat, webCat Category
	emptyCat      Category
	sqlite, acao  Tag
	unused        Tag
	posts         []Post
	about, draft  Page
}

func newFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	f.ana, err = s.CreateUser(ctx, User{Username: "ana", FirstName: "Ana", LastName: "Souza"})
	must(err)
	f.bob, err = s.CreateUser(ctx, User{Username: "bob"})
	must(err)

	f.goCat, err = s.CreateCategory(ctx, Category{Name: "Go"})
	must(err)
	f.webCat, err = s.CreateCategory(ctx, Category{Name: "Web"})
	must(err)
	f.emptyCat, err = s.CreateCategory(ctx, Category{Name: "Empty"})
	must(err)

	f.sqlite, err = s.CreateTag(ctx, Tag{Name: "sqlite"})
	must(err)
	f.acao, err = s.CreateTag(ctx, Tag{Name: "Ação"})
	must(err)
	f.unused, err = s.CreateTag(ctx, Tag{Name: "unused"})
	must(err)

	specs := []Post{
		{Title: "First post", Excerpt: "the first one", Content: "Olá MUNDO", IsPublished: true,
			CreatedBy: &f.ana, Category: &f.goCat, Tags: []Tag{f.sqlite}},
		{Title: "Second post", Excerpt: "ÉLAN vital", Content: "plain", IsPublished: true,
			CreatedBy: &f.ana, Category: &f.webCat},
		{Title: "Hidden draft", Excerpt: "secret", Content: "mundo draft", IsPublished: false,
			CreatedBy: &f.ana, Category: &f.goCat, Tags: []Tag{f.acao}},
		{Title: "Third post", Excerpt: "the third one", Content: "more", IsPublished: true,
			CreatedBy: &f.ana, Category: &f.goCat, Tags: []Tag{f.acao, f.sqlite}},
	}
	for _, p := range specs {
		created, err := s.CreatePost(ctx, p)
		must(err)
		f.posts = append(f.posts, created)
	}

	f.about, err = s.CreatePage(ctx, Page{Title: "About", Content: "About **us**", IsPublished: true})
	must(err)
	f.draft, err = s.CreatePage(ctx, Page{Title: "Draft page", Content: "wip"})
	must(err)
	return f
}

// addPosts creates n published posts in cat.
func addPosts(t *testing.T, s *Store, n int, cat *Category) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		_, err := s.CreatePost(ctx, Post{
			Title:       fmt.Sprintf("Bulk post %02d", i),
			Excerpt:     "bulk",
			Content:     "bulk content",
			IsPublished: true,
			Category:    cat,
		})
		if err != nil {
			t.Fatalf("addPosts: %v", err)
		}
	}
}

// insertBulkPosts adds n published posts slugged bulk-1..bulk-n in a single
// statement, for tests that need more rows than CreatePost can make quickly.
func insertBulkPosts(t *testing.T, s *Store, n int) {
	t.Helper()
	now := time.Now().UTC()
	_, err := s.DB().ExecContext(context.Background(), `INSERT INTO posts
		(title, slug, is_published, created_at, updated_at)
		WITH RECURSIVE seq(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM seq WHERE i < ?)
		SELECT 'Bulk ' || i, 'bulk-' || i, 1, ?, ? FROM seq`, n, now, now)
	if err != nil {
		t.Fatalf("insertBulkPosts: %v", err)
	}
}
