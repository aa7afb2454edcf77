// Package migrations holds the SQLite schema, applied by db.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
