// Package migrations embeds the SQL schema of the persisted store.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
