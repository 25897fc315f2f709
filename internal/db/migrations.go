package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite/*.sql files/postgres/*.sql
var migrationFiles embed.FS

// ApplyMigrations brings the schema to the latest version. Already-current databases are left alone.
func ApplyMigrations(db *sql.DB, driver string) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	// m is not closed: that would close db, which the caller owns.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

type MigrationStatus struct {
	Version uint `json:"version"`
	Latest  uint `json:"latest"`
	Dirty   bool `json:"dirty"`
}

func (s MigrationStatus) Current() bool {
	return !s.Dirty && s.Version == s.Latest
}

// Status reports the applied and latest schema versions. A fresh database reports version 0.
func Status(db *sql.DB, driver string) (MigrationStatus, error) {
	m, err := newMigrate(db, driver)
	if err != nil {
		return MigrationStatus{}, err
	}
	status := MigrationStatus{}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return status, fmt.Errorf("read schema version: %w", err)
	}
	status.Version, status.Dirty = version, dirty

	src, err := sourceFor(driver)
	if err != nil {
		return status, err
	}
	defer src.Close()
	status.Latest, err = latestVersion(src)
	if err != nil {
		return status, fmt.Errorf("determine latest version: %w", err)
	}
	return status, nil
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, error) {
	src, err := sourceFor(driver)
	if err != nil {
		return nil, err
	}
	var target database.Driver
	switch driver {
	case DriverSQLite:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("create migration database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func sourceFor(driver string) (source.Driver, error) {
	sub, err := fs.Sub(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	src, err := iofs.New(sub, driver)
	if err != nil {
		return nil, fmt.Errorf("create migration source for %q: %w", driver, err)
	}
	return src, nil
}

func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			return version, nil
		}
		version = next
	}
}
