package sitepress

import (
	"strconv"
	"strings"
)

// PerPage is the number of posts on one listing page.
const PerPage = 9

// Pagination describes the current page of a listing.
type Pagination struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

// HasPrevious reports whether a page precedes the current one.
func (p Pagination) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows the current one.
func (p Pagination) HasNext() bool { return p.Number < p.NumPages }

// HasOtherPages reports whether the listing spans more than one page.
func (p Pagination) HasOtherPages() bool { return p.NumPages > 1 }

// Previous returns the previous page number.
func (p Pagination) Previous() int { return p.Number - 1 }

// Next returns the next page number.
func (p Pagination) Next() int { return p.Number + 1 }

// Offset returns the index of the first item on the current page.
func (p Pagination) Offset() int { return (p.Number - 1) * p.PerPage }

// Pages returns up to five page numbers centred on the current page.
func (p Pagination) Pages() []int {
	const window = 5
	start := max(1, p.Number-window/2)
	end := min(p.NumPages, start+window-1)
	start = max(1, end-window+1)
	pages := make([]int, 0, window)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

// paginate resolves the raw "page" request value against count items.
// Blank means 1 and "last" means the final page. Non-numeric, out-of-range
// and non-positive values are ErrNotFound. With allowEmpty, page 1 of an
// empty listing is valid.
func paginate(count, perPage int, raw string, allowEmpty bool) (Pagination, error) {
	numPages := 0
	if count > 0 || allowEmpty {
		numPages = (max(1, count) + perPage - 1) / perPage
	}

	raw = strings.TrimSpace(raw)
	var number int
	switch raw {
	case "":
		number = 1
	case "last":
		number = numPages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Pagination{}, ErrNotFound
		}
		number = n
	}

	if number < 1 || number > numPages {
		return Pagination{}, ErrNotFound
	}
	return Pagination{Number: number, NumPages: numPages, Count: count, PerPage: perPage}, nil
}
