package sitepress

import (
	"context"
	"strings"
)

// ContentStore is the read side of Store used by the views.
type ContentStore interface {
	PublishedPosts(ctx context.Context, q PostQuery) ([]Post, error)
	CountPublishedPosts(ctx context.Context, q PostQuery) (int, error)
	PublishedPost(ctx context.Context, slug string) (Post, error)
	PublishedPage(ctx context.Context, slug string) (Page, error)
	User(ctx context.Context, id int64) (User, error)
}

// Listing is the resolved content of a listing view.
type Listing struct {
	Posts       []Post
	Pagination  Pagination
	PageTitle   string
	SearchValue string
}

// PostDetailView is the resolved content of a post detail view.
type PostDetailView struct {
	Post      Post
	PageTitle string
}

// PageDetailView is the resolved content of a page detail view.
type PageDetailView struct {
	Page      Page
	PageTitle string
}

// Blog implements the listing and detail views over published content.
// Every request-derived value is passed in explicitly; Blog holds no
// per-request state and is safe for concurrent use.
type Blog struct {
	store ContentStore
}

// NewBlog creates a Blog reading from store.
func NewBlog(store ContentStore) *Blog {
	return &Blog{store: store}
}

// Home lists all published posts.
func (b *Blog) Home(ctx context.Context, page string) (Listing, error) {
	posts, pg, err := b.list(ctx, PostQuery{}, page, true)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Posts: posts, Pagination: pg, PageTitle: HomeTitle()}, nil
}

// ByAuthor lists the posts created by the user with authorID. An unknown
// user is ErrNotFound; a known user without posts yields an empty listing.
func (b *Blog) ByAuthor(ctx context.Context, authorID int64, page string) (Listing, error) {
	user, err := b.store.User(ctx, authorID)
	if err != nil {
		return Listing{}, err
	}
	posts, pg, err := b.list(ctx, PostQuery{}.ByAuthor(user.ID), page, true)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Posts: posts, Pagination: pg, PageTitle: AuthorTitle(user)}, nil
}

// ByCategory lists the posts in the category. No results is ErrNotFound.
func (b *Blog) ByCategory(ctx context.Context, slug, page string) (Listing, error) {
	posts, pg, err := b.list(ctx, PostQuery{}.InCategory(slug), page, false)
	if err != nil {
		return Listing{}, err
	}
	name := ""
	if c := posts[0].Category; c != nil {
		name = c.Name
	}
	return Listing{Posts: posts, Pagination: pg, PageTitle: CategoryTitle(name)}, nil
}

// ByTag lists the posts carrying the tag. No results is ErrNotFound.
func (b *Blog) ByTag(ctx context.Context, slug, page string) (Listing, error) {
	posts, pg, err := b.list(ctx, PostQuery{}.WithTag(slug), page, false)
	if err != nil {
		return Listing{}, err
	}
	tag, _ := posts[0].TagBySlug(slug)
	return Listing{Posts: posts, Pagination: pg, PageTitle: TagTitle(tag.Name)}, nil
}

// Search lists the first PerPage posts whose title, excerpt or content
// contains the trimmed term. A blank term is ErrEmptySearch.
func (b *Blog) Search(ctx context.Context, term, page string) (Listing, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Listing{}, ErrEmptySearch
	}

	posts, err := b.store.PublishedPosts(ctx, PostQuery{}.Matching(term).Window(PerPage, 0))
	if err != nil {
		return Listing{}, err
	}
	pg, err := paginate(len(posts), PerPage, page, true)
	if err != nil {
		return Listing{}, err
	}
	return Listing{
		Posts:       posts,
		Pagination:  pg,
		PageTitle:   SearchTitle(term),
		SearchValue: term,
	}, nil
}

// PostDetail returns the published post with slug.
func (b *Blog) PostDetail(ctx context.Context, slug string) (PostDetailView, error) {
	post, err := b.store.PublishedPost(ctx, slug)
	if err != nil {
		return PostDetailView{}, err
	}
	return PostDetailView{Post: post, PageTitle: DetailTitle(post.Title)}, nil
}

// PageDetail returns the published page with slug.
func (b *Blog) PageDetail(ctx context.Context, slug string) (PageDetailView, error) {
	page, err := b.store.PublishedPage(ctx, slug)
	if err != nil {
		return PageDetailView{}, err
	}
	return PageDetailView{Page: page, PageTitle: DetailTitle(page.Title)}, nil
}

// list counts q, resolves the requested page and fetches it. Without
// allowEmpty an empty result is ErrNotFound.
func (b *Blog) list(ctx context.Context, q PostQuery, page string, allowEmpty bool) ([]Post, Pagination, error) {
	count, err := b.store.CountPublishedPosts(ctx, q)
	if err != nil {
		return nil, Pagination{}, err
	}
	if count == 0 && !allowEmpty {
		return nil, Pagination{}, ErrNotFound
	}
	pg, err := paginate(count, PerPage, page, allowEmpty)
	if err != nil {
		return nil, Pagination{}, err
	}
	posts, err := b.store.PublishedPosts(ctx, q.Window(pg.PerPage, pg.Offset()))
	if err != nil {
		return nil, Pagination{}, err
	}
	// Posts may be unpublished between the count and the fetch.
	if len(posts) == 0 && !allowEmpty {
		return nil, Pagination{}, ErrNotFound
	}
	return posts, pg, nil
}
