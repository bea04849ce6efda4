package migrations

import (
	"embed"
)

// Schema migrations are embedded so the binary can stand up its own
// database on first boot.
//
//go:embed *.sql
var embedMigrations embed.FS

func GetMigrations() embed.FS {
	return embedMigrations
}
