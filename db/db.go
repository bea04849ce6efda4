package db

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mxwhit/marquee/config"
)

func Initialize(cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", cfg.Marquee.DbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Marquee.DbPath, err)
	}
	return db, nil
}

// ApplyMigrations brings the play history schema up to date using the
// SQL files embedded in the migrations package.
func ApplyMigrations(db *sqlx.DB, migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
