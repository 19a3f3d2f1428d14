package main

// Apply, roll back or inspect schema migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"os"

	"careerlift-backend/internal/shared/config"
	"careerlift-backend/internal/shared/storage/db"
	"careerlift-backend/internal/shared/telemetry"
)

func main() {
	command := db.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.config", map[string]any{"error": "DATABASE_URL is required"})
		os.Exit(1)
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}
