package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"doc-summary/internal/shared/telemetry"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	gooseOnce sync.Once
	gooseErr  error
)

// configureGoose points goose at the embedded workflow_events migrations.
// goose keeps this in package state, so it is set once per process.
func configureGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFiles)
		if err := goose.SetDialect("postgres"); err != nil {
			gooseErr = fmt.Errorf("goose dialect: %w", err)
		}
	})
	return gooseErr
}

// RunMigrations brings the event tables up to date. A nil database is a no-op
// so callers without a Postgres sink can call it unconditionally.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	telemetry.Info("migrations applied", map[string]any{"dir": migrationsDir})
	return nil
}
