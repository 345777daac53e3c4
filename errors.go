package sitepress

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist, is not
	// published, or a listing that must not be empty has no results.
	ErrNotFound = errors.New("not found")

	// ErrEmptySearch is returned by Search when the term is blank.
	ErrEmptySearch = errors.New("empty search term")

	// ErrRateLimited is returned when a client exceeds the search rate limit.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotEmpty is returned by Seed when the database already has content.
	ErrNotEmpty = errors.New("database is not empty")
)
