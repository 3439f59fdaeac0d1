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

// Runner applies the ledger schema migrations through golang-migrate.
type Runner struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewRunner builds a Runner over an open Postgres connection and a directory
// of .up.sql/.down.sql pairs.
func NewRunner(db *sql.DB, dir string, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration source %s: %w", dir, err)
	}
	return &Runner{m: m, logger: logger}, nil
}

// Up applies every pending migration.
func (r *Runner) Up() error {
	return r.finish("apply schema migrations", r.m.Up())
}

// Down rolls every migration back.
func (r *Runner) Down() error {
	return r.finish("roll back schema migrations", r.m.Down())
}

// Steps applies n migrations, negative n rolls back.
func (r *Runner) Steps(n int) error {
	return r.finish(fmt.Sprintf("step %d migrations", n), r.m.Steps(n))
}

// Version reports the current schema version. A fresh database reports
// version 0 and no error.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version to recover a dirty database.
func (r *Runner) Force(version int) error {
	r.logger.Warn("forcing schema version", zap.Int("version", version))
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force schema version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles.
func (r *Runner) Close() error {
	sourceErr, dbErr := r.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

// finish logs the outcome of a migration action, treating ErrNoChange as a
// clean no-op.
func (r *Runner) finish(action string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("schema already current", zap.String("action", action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	version, dirty, verr := r.Version()
	if verr != nil {
		return verr
	}
	r.logger.Info("schema migration finished",
		zap.String("action", action),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
