// Package migrations embeds the Postgres schema read by the introspection service.
package migrations

import "embed"

// FS contains the *_up.sql migrations, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
