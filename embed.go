package sitepress

import "embed"

// migrations holds the goose SQL migrations applied by Migrate.
//
//go:embed migrations/*.sql
var migrations embed.FS
