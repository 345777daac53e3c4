package sitepress

// Page titles are prefixes; templates append the site title.

const searchTitleRunes = 30

// HomeTitle is the title of the default listing.
func HomeTitle() string {
	return "Home - "
}

// AuthorTitle is the title of an author's listing.
func AuthorTitle(u User) string {
	return "Posts de " + u.DisplayName() + " - "
}

// CategoryTitle is the title of a category listing.
func CategoryTitle(name string) string {
	return name + " - Categoria - "
}

// TagTitle is the title of a tag listing.
func TagTitle(name string) string {
	return name + " - Tag - "
}

// SearchTitle is the title of a search listing, using at most the first 30
// characters of the term.
func SearchTitle(term string) string {
	return truncateRunes(term, searchTitleRunes) + " - Search - "
}

// DetailTitle is the title of a post or page detail view.
func DetailTitle(title string) string {
	return title + " - "
}
