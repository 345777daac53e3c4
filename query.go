package sitepress

import "strings"

// PostQuery describes a filter over published posts. Non-zero fields are
// ANDed together; Search matches title, excerpt or content (ORed) without
// regard to case.
type PostQuery struct {
	AuthorID     int64
	CategorySlug string
	TagSlug      string
	Search       string

	Limit  int // <= 0 means no limit
	Offset int
}

// ByAuthor returns a copy of q restricted to posts created by the user id.
func (q PostQuery) ByAuthor(id int64) PostQuery {
	q.AuthorID = id
	return q
}

// InCategory returns a copy of q restricted to the category slug.
func (q PostQuery) InCategory(slug string) PostQuery {
	q.CategorySlug = slug
	return q
}

// WithTag returns a copy of q restricted to posts tagged with slug.
func (q PostQuery) WithTag(slug string) PostQuery {
	q.TagSlug = slug
	return q
}

// Matching returns a copy of q restricted to posts containing term.
func (q PostQuery) Matching(term string) PostQuery {
	q.Search = term
	return q
}

// Window returns a copy of q limited to limit rows starting at offset.
func (q PostQuery) Window(limit, offset int) PostQuery {
	q.Limit = limit
	q.Offset = offset
	return q
}

// where renders the filter as a SQL WHERE clause over posts aliased p and
// categories aliased c. The published predicate is always present.
func (q PostQuery) where() (string, []any) {
	conds := []string{"p.is_published = 1"}
	var args []any

	if q.AuthorID != 0 {
		conds = append(conds, "p.created_by = ?")
		args = append(args, q.AuthorID)
	}
	if q.CategorySlug != "" {
		conds = append(conds, "c.slug = ?")
		args = append(args, q.CategorySlug)
	}
	if q.TagSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, q.TagSlug)
	}
	if q.Search != "" {
		term := foldCase(q.Search)
		conds = append(conds, `(instr(casefold(p.title), ?) > 0
			OR instr(casefold(p.excerpt), ?) > 0
			OR instr(casefold(p.content), ?) > 0)`)
		args = append(args, term, term, term)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// limit renders LIMIT/OFFSET; SQLite treats a negative limit as unbounded.
func (q PostQuery) limit() (string, []any) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return "LIMIT ? OFFSET ?", []any{limit, offset}
}
