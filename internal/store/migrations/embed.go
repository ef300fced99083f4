package migrations

import "embed"

// FS contains embedded SQLite migrations for battle session storage.
//
//go:embed *.sql
var FS embed.FS
