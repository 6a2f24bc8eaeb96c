// Package db applies schema migrations at startup.
package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate runs pending migrations from migrationsURL against the database.
// An already up-to-date schema is not an error.
func Migrate(migrationsURL, dsn string) error {
	m, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
