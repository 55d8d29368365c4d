package sqlite

import (
	"errors"
	"fmt"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func (m *Store) migrator() (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(m.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("sqlite: migration driver: %w", err)
	}
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("sqlite: migration source: %w", err)
	}
	mg, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("sqlite: migrator: %w", err)
	}
	return mg, nil
}

// ApplyMigrations brings the schema up to the newest embedded migration.
// An up to date database is left untouched.
func (m *Store) ApplyMigrations() error {
	mg, err := m.migrator()
	if err != nil {
		return err
	}
	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version. dirty is true when a
// migration failed halfway and the schema needs manual repair.
func (m *Store) SchemaVersion() (version uint, dirty bool, err error) {
	mg, err := m.migrator()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: schema version: %w", err)
	}
	return version, dirty, nil
}
