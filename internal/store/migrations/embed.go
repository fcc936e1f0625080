// Package migrations holds the SQL schema of the development origin.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
