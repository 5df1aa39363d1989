// Package migrations embeds the schema migration files so binaries can
// apply them without shipping loose SQL alongside.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
