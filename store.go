package sitepress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store wraps a SQLite database and provides read access to published
// content plus the write operations used by the seeder and CLI.
type Store struct {
	db *sql.DB
	tx *sql.Tx // set on the Store handed to WithTx callbacks
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// WithTx runs fn against a Store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise. Nested calls reuse
// the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Store{db: s.db, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NewStore opens (or creates) the SQLite database at path and runs schema
// migrations.
func NewStore(path string) (*Store, error) {
	db, err := OpenDB(path, DefaultDBConfig())
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const postColumns = `SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.is_published,
	p.created_at, p.updated_at,
	u.id, u.username, u.first_name, u.last_name,
	c.id, c.name, c.slug
FROM posts p
LEFT JOIN users u ON u.id = p.created_by
LEFT JOIN categories c ON c.id = p.category_id`

// PublishedPosts returns the published posts matching q, newest first, with
// author, category and tags loaded.
func (s *Store) PublishedPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	where, args := q.where()
	limit, limitArgs := q.limit()
	query := postColumns + "\n" + where + "\nORDER BY p.id DESC\n" + limit

	rows, err := s.q().QueryContext(ctx, query, append(args, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountPublishedPosts returns how many published posts match q. The window
// fields of q are ignored.
func (s *Store) CountPublishedPosts(ctx context.Context, q PostQuery) (int, error) {
	where, args := q.where()
	query := `SELECT COUNT(*) FROM posts p LEFT JOIN categories c ON c.id = p.category_id ` + where

	var n int
	if err := s.q().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

// PublishedPost returns a single published post by slug.
func (s *Store) PublishedPost(ctx context.Context, slug string) (Post, error) {
	row := s.q().QueryRowContext(ctx, postColumns+"\nWHERE p.slug = ? AND p.is_published = 1", slug)
	p, err := scanPost(row)
	if err != nil {
		return Post{}, notFound(err)
	}
	posts := []Post{p}
	if err := s.attachTags(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// PublishedPage returns a single published page by slug.
func (s *Store) PublishedPage(ctx context.Context, slug string) (Page, error) {
	var p Page
	err := s.q().QueryRowContext(ctx,
		`SELECT id, title, slug, content, is_published FROM pages WHERE slug = ? AND is_published = 1`, slug).
		Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.IsPublished)
	if err != nil {
		return Page{}, notFound(err)
	}
	return p, nil
}

// PublishedPages returns every published page ordered by title.
func (s *Store) PublishedPages(ctx context.Context) ([]Page, error) {
	rows, err := s.q().QueryContext(ctx,
		`SELECT id, title, slug, content, is_published FROM pages WHERE is_published = 1 ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.IsPublished); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// PublishedPostLinks returns the slug and modification time of every
// published post, newest first, without loading content or relations.
func (s *Store) PublishedPostLinks(ctx context.Context) ([]PostLink, error) {
	rows, err := s.q().QueryContext(ctx,
		`SELECT slug, updated_at FROM posts WHERE is_published = 1 ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying post links: %w", err)
	}
	defer rows.Close()

	var links []PostLink
	for rows.Next() {
		var l PostLink
		if err := rows.Scan(&l.Slug, &l.UpdatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// User returns the user with the given id.
func (s *Store) User(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.q().QueryRowContext(ctx,
		`SELECT id, username, first_name, last_name FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName)
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

// SiteSetup returns the first site setup row with its menu links, or
// DefaultSiteSetup when none has been created.
func (s *Store) SiteSetup(ctx context.Context) (SiteSetup, error) {
	var ss SiteSetup
	err := s.q().QueryRowContext(ctx, `SELECT id, title, description, show_header, show_search, show_menu,
		show_description, show_pagination, show_footer, favicon
		FROM site_setup ORDER BY id LIMIT 1`).
		Scan(&ss.ID, &ss.Title, &ss.Description, &ss.ShowHeader, &ss.ShowSearch, &ss.ShowMenu,
			&ss.ShowDescription, &ss.ShowPagination, &ss.ShowFooter, &ss.Favicon)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSiteSetup(), nil
	}
	if err != nil {
		return SiteSetup{}, fmt.Errorf("loading site setup: %w", err)
	}

	rows, err := s.q().QueryContext(ctx,
		`SELECT id, text, url_or_path, new_tab FROM menu_links WHERE site_setup_id = ? ORDER BY id`, ss.ID)
	if err != nil {
		return SiteSetup{}, fmt.Errorf("loading menu: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m MenuLink
		if err := rows.Scan(&m.ID, &m.Text, &m.URLOrPath, &m.NewTab); err != nil {
			return SiteSetup{}, err
		}
		ss.Menu = append(ss.Menu, m)
	}
	return ss, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var (
		p                             Post
		userID, catID                 sql.NullInt64
		username, firstName, lastName sql.NullString
		catName, catSlug              sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.IsPublished,
		&p.CreatedAt, &p.UpdatedAt,
		&userID, &username, &firstName, &lastName,
		&catID, &catName, &catSlug); err != nil {
		return Post{}, err
	}
	if userID.Valid {
		p.CreatedBy = &User{ID: userID.Int64, Username: username.String, FirstName: firstName.String, LastName: lastName.String}
	}
	if catID.Valid {
		p.Category = &Category{ID: catID.Int64, Name: catName.String, Slug: catSlug.String}
	}
	return p, nil
}

// tagBatchSize bounds the IN list of one tag query, well under SQLite's
// host parameter limit.
const tagBatchSize = 500

// attachTags loads the tags of all posts, tagBatchSize posts per query.
func (s *Store) attachTags(ctx context.Context, posts []Post) error {
	index := make(map[int64]int, len(posts))
	for i, p := range posts {
		index[p.ID] = i
	}
	for start := 0; start < len(posts); start += tagBatchSize {
		batch := posts[start:min(start+tagBatchSize, len(posts))]
		if err := s.loadTagBatch(ctx, posts, index, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadTagBatch(ctx context.Context, posts []Post, index map[int64]int, batch []Post) error {
	placeholders := make([]string, len(batch))
	args := make([]any, len(batch))
	for i, p := range batch {
		placeholders[i] = "?"
		args[i] = p.ID
	}

	rows, err := s.q().QueryContext(ctx, `SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY t.name`, args...)
	if err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var t Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// --- Writes (seeding and CLI) ---

// CreateUser inserts a user and returns it with its id.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	res, err := s.q().ExecContext(ctx,
		`INSERT INTO users (username, first_name, last_name) VALUES (?, ?, ?)`,
		u.Username, u.FirstName, u.LastName)
	if err != nil {
		return User{}, fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

// CreateCategory inserts a category. An empty slug is derived from the name.
func (s *Store) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	res, err := s.q().ExecContext(ctx, `INSERT INTO categories (name, slug) VALUES (?, ?)`, c.Name, c.Slug)
	if err != nil {
		return Category{}, fmt.Errorf("creating category %q: %w", c.Slug, err)
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

// CreateTag inserts a tag. An empty slug is derived from the name.
func (s *Store) CreateTag(ctx context.Context, t Tag) (Tag, error) {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	res, err := s.q().ExecContext(ctx, `INSERT INTO tags (name, slug) VALUES (?, ?)`, t.Name, t.Slug)
	if err != nil {
		return Tag{}, fmt.Errorf("creating tag %q: %w", t.Slug, err)
	}
	t.ID, err = res.LastInsertId()
	return t, err
}

// CreatePost inserts a post and its tag links in one transaction. Author,
// category and tags are referenced by id.
func (s *Store) CreatePost(ctx context.Context, p Post) (Post, error) {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var author, category sql.NullInt64
	if p.CreatedBy != nil {
		author = sql.NullInt64{Int64: p.CreatedBy.ID, Valid: true}
	}
	if p.Category != nil {
		category = sql.NullInt64{Int64: p.Category.ID, Valid: true}
	}

	err := s.WithTx(ctx, func(tx *Store) error {
		res, err := tx.q().ExecContext(ctx, `INSERT INTO posts
			(title, slug, excerpt, content, is_published, created_by, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Title, p.Slug, p.Excerpt, p.Content, p.IsPublished, author, category, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating post %q: %w", p.Slug, err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, t := range p.Tags {
			if _, err := tx.q().ExecContext(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, p.ID, t.ID); err != nil {
				return fmt.Errorf("tagging post %q: %w", p.Slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// SetPostPublished flips the published flag of a post.
func (s *Store) SetPostPublished(ctx context.Context, slug string, published bool) error {
	res, err := s.q().ExecContext(ctx, `UPDATE posts SET is_published = ?, updated_at = ? WHERE slug = ?`,
		published, time.Now().UTC(), slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePage inserts a page. An empty slug is derived from the title.
func (s *Store) CreatePage(ctx context.Context, p Page) (Page, error) {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	res, err := s.q().ExecContext(ctx,
		`INSERT INTO pages (title, slug, content, is_published) VALUES (?, ?, ?, ?)`,
		p.Title, p.Slug, p.Content, p.IsPublished)
	if err != nil {
		return Page{}, fmt.Errorf("creating page %q: %w", p.Slug, err)
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

// SaveSiteSetup inserts or updates the site setup row and replaces its menu.
func (s *Store) SaveSiteSetup(ctx context.Context, ss SiteSetup) (SiteSetup, error) {
	err := s.WithTx(ctx, func(tx *Store) error {
		q := tx.q()
		if ss.ID == 0 {
			res, err := q.ExecContext(ctx, `INSERT INTO site_setup
				(title, description, show_header, show_search, show_menu, show_description, show_pagination, show_footer, favicon)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ss.Title, ss.Description, ss.ShowHeader, ss.ShowSearch, ss.ShowMenu,
				ss.ShowDescription, ss.ShowPagination, ss.ShowFooter, ss.Favicon)
			if err != nil {
				return fmt.Errorf("creating site setup: %w", err)
			}
			if ss.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		} else {
			if _, err := q.ExecContext(ctx, `UPDATE site_setup SET title = ?, description = ?, show_header = ?,
				show_search = ?, show_menu = ?, show_description = ?, show_pagination = ?, show_footer = ?, favicon = ?
				WHERE id = ?`,
				ss.Title, ss.Description, ss.ShowHeader, ss.ShowSearch, ss.ShowMenu,
				ss.ShowDescription, ss.ShowPagination, ss.ShowFooter, ss.Favicon, ss.ID); err != nil {
				return fmt.Errorf("updating site setup: %w", err)
			}
			if _, err := q.ExecContext(ctx, `DELETE FROM menu_links WHERE site_setup_id = ?`, ss.ID); err != nil {
				return err
			}
		}

		for i, m := range ss.Menu {
			res, err := q.ExecContext(ctx,
				`INSERT INTO menu_links (text, url_or_path, new_tab, site_setup_id) VALUES (?, ?, ?, ?)`,
				m.Text, m.URLOrPath, m.NewTab, ss.ID)
			if err != nil {
				return fmt.Errorf("creating menu link %q: %w", m.Text, err)
			}
			if ss.Menu[i].ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SiteSetup{}, err
	}
	return ss, nil
}

// IsEmpty reports whether the database holds no users, categories, tags,
// posts or pages, published or not.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := s.q().QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users) + (SELECT COUNT(*) FROM categories) +
		(SELECT COUNT(*) FROM tags) + (SELECT COUNT(*) FROM posts) + (SELECT COUNT(*) FROM pages)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking for content: %w", err)
	}
	return n == 0, nil
}

// DeleteSiteSetup removes a site setup row; its menu links cascade.
func (s *Store) DeleteSiteSetup(ctx context.Context, id int64) error {
	_, err := s.q().ExecContext(ctx, `DELETE FROM site_setup WHERE id = ?`, id)
	return err
}

// MenuLinkCount returns the number of stored menu links, attached or not.
func (s *Store) MenuLinkCount(ctx context.Context) (int, error) {
	var n int
	err := s.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_links`).Scan(&n)
	return n, err
}
