// Package migrations provides the embedded SQL schema.
// Applied by `server migrate` and by testutil for integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
