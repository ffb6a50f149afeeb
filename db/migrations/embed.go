// Package migrations contains embedded SQL migration files for the SQL ledgers.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files, one directory per dialect.
//
//go:embed sqlite/*.sql mysql/*.sql
var Files embed.FS
