// Package migrations embeds the SQL schema for both backing stores so the
// binary can bootstrap them at startup without shipping loose files.
package migrations

import "embed"

//go:embed postgres/*.sql clickhouse/*.sql
var FS embed.FS
