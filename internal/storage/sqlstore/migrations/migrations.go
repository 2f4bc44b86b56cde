// Package migrations embeds the schema of the SQL backends, one
// subdirectory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
