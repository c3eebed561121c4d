// Package migrations holds the versioned PostgreSQL schema applied by
// cmd/migrate and by the integration test suite.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
