// Package migrations embeds the SQL schema migrations for postgres.
package migrations

import "embed"

// FS holds NNNNNN_name.sql files and their NNNNNN_name_rollback.sql counterparts.
//
//go:embed *.sql
var FS embed.FS
