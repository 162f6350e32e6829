// migrations/embed.go
package migrations

import "embed"

// Files exposes the embedded SQL migrations in golang-migrate naming.
//
//go:embed *.sql
var Files embed.FS
