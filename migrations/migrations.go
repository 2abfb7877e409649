// Package migrations embeds the goose SQL migrations so both the server
// (--migrate) and the test helper can apply them without a checkout layout
// dependency.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
