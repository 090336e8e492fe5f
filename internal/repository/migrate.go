package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies every pending up migration found at sourceURL (for example
// "file://migrations") and reports the schema version before and after.
// The caller keeps ownership of db.
func Migrate(db *sql.DB, sourceURL string) (before, after uint, err error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, 0, fmt.Errorf("Migrate: driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return 0, 0, fmt.Errorf("Migrate: init: %w", err)
	}

	before, err = schemaVersion(m)
	if err != nil {
		return 0, 0, fmt.Errorf("Migrate: version before: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, 0, fmt.Errorf("Migrate: up: %w", err)
	}

	after, err = schemaVersion(m)
	if err != nil {
		return before, 0, fmt.Errorf("Migrate: version after: %w", err)
	}
	return before, after, nil
}

func schemaVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}
