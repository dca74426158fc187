// Package migrations embeds the goose migrations for the SQLite question store.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
