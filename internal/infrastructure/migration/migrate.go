package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator wraps golang-migrate with logging. All schema changes go
// through SQL files under the migrations directory; GORM AutoMigrate
// is not used.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator over an open Postgres connection.
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration. ErrNoChange is not an error.
func (mg *Migrator) Up() error {
	mg.log.Info("Running migrations up")

	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	mg.log.Info("Migrations completed",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back every applied migration.
func (mg *Migrator) Down() error {
	mg.log.Info("Running migrations down")

	err := mg.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}

	mg.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations: positive up, negative down.
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Running migration steps", zap.Int("steps", n))

	err := mg.m.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	mg.log.Info("Migration steps completed",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// GoTo migrates up or down until the schema is at version.
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("Migrating to version", zap.Uint("target_version", version))

	err := mg.m.Migrate(version)
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Already at target version")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}

	mg.log.Info("Migration to version completed", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version. A fresh database
// reports version 0, not an error.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running any SQL.
// Only for repairing a dirty schema_migrations row.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing migration version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}

	mg.log.Info("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop destroys every table in the database.
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping database - all data will be lost")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	mg.log.Info("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
