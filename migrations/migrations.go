// Package migrations contains the database schema as a series of
// forward-only migration files.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS contains all migration files in lexical order.
var FS fs.FS = files
