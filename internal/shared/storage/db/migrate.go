package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// RunMigrations applies every pending migration. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, MigrateUp)
}

// Migrate runs one goose command against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	switch command {
	case MigrateDown:
		return goose.DownContext(ctx, database, "migrations")
	case MigrateStatus:
		return goose.StatusContext(ctx, database, "migrations")
	default:
		return goose.UpContext(ctx, database, "migrations")
	}
}
