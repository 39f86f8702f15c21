// Package migrations applies the embedded schema migrations.
//
// It carries a small golang-migrate driver compatible with
// ncruces/go-sqlite3. The stock golang-migrate sqlite3 driver pulls in
// mattn/go-sqlite3, and both register the driver name "sqlite3", so the
// two cannot coexist in one binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var embeddedFS embed.FS

// FS exposes the embedded migration files for tests.
func FS() fs.FS {
	return embeddedFS
}

// Run applies every pending migration to db. A database that is already
// current is not an error.
func Run(db *sql.DB) error {
	source, err := iofs.New(embeddedFS, ".")
	if err != nil {
		return err
	}

	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}

	return nil
}
