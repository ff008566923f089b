package main

// Create or upgrade the workflow_events table:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"doc-summary/internal/shared/config"
	"doc-summary/internal/shared/storage/db"
	"doc-summary/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Setup(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("failed to connect database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrations applied", nil)
}
