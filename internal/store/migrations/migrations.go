// Package migrations embeds the account-store schema for both SQL backends.
// Each backend keeps its own dialect directory; goose applies them with the
// matching dialect set.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
