// internal/adapters/db/migrations.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ammerola/mfg-erp/migrations"
)

// MigrationConfig points the migrator at a database and a set of
// migration files. Zero fields take the embedded schema defaults.
type MigrationConfig struct {
	DatabaseURL      string
	Source           fs.FS
	TableName        string
	SchemaName       string
	ForceDirty       bool
	StatementTimeout time.Duration
}

func (c MigrationConfig) withDefaults() MigrationConfig {
	if c.Source == nil {
		c.Source = migrations.FS
	}
	if c.TableName == "" {
		c.TableName = "schema_migrations"
	}
	if c.SchemaName == "" {
		c.SchemaName = "public"
	}
	if c.StatementTimeout == 0 {
		c.StatementTimeout = 10 * time.Minute
	}
	return c
}

// Migrator applies the ledger schema with golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	config  MigrationConfig
	logger  *slog.Logger
	db      *sql.DB
}

// MigrationStatus is the schema version plus every applied row.
type MigrationStatus struct {
	CurrentVersion uint               `json:"current_version"`
	IsDirty        bool               `json:"is_dirty"`
	Applied        []AppliedMigration `json:"applied"`
}

type AppliedMigration struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func NewMigrator(config *MigrationConfig, logger *slog.Logger) (*Migrator, error) {
	if config == nil {
		return nil, errors.New("migration config is required")
	}
	cfg := config.withDefaults()

	conn, err := openMigrationDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	m, err := newMigrate(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Migrator{
		migrate: m,
		config:  cfg,
		logger:  logger.With(slog.String("component", "migrator")),
		db:      conn,
	}, nil
}

// openMigrationDB opens a small database/sql pool; golang-migrate does not
// speak pgxpool.
func openMigrationDB(url string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	conn.SetMaxOpenConns(2)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping migration connection: %w", err)
	}
	return conn, nil
}

func newMigrate(conn *sql.DB, cfg MigrationConfig) (*migrate.Migrate, error) {
	target, err := postgres.WithInstance(conn, &postgres.Config{
		MigrationsTable:  cfg.TableName,
		SchemaName:       cfg.SchemaName,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	source, err := iofs.New(cfg.Source, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. A dirty schema is an error unless
// ForceDirty is set, in which case the dirty version is forced clean first.
func (m *Migrator) Up(ctx context.Context) error {
	version, dirty, err := m.version()
	if err != nil {
		return err
	}
	if dirty {
		if !m.config.ForceDirty {
			return fmt.Errorf("schema is dirty at version %d", version)
		}
		m.logger.WarnContext(ctx, "forcing dirty schema version", slog.Uint64("version", uint64(version)))
		if err := m.migrate.Force(int(version)); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
	}

	switch err := m.migrate.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.InfoContext(ctx, "schema up to date", slog.Uint64("version", uint64(version)))
		return nil
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	}

	if after, _, err := m.version(); err == nil {
		m.logger.InfoContext(ctx, "schema migrated",
			slog.Uint64("from", uint64(version)), slog.Uint64("to", uint64(after)))
	}
	return nil
}

// Drop removes every table in the schema, the version table included.
func (m *Migrator) Drop(ctx context.Context) error {
	m.logger.WarnContext(ctx, "dropping schema", slog.String("schema", m.config.SchemaName))
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	version, dirty, err := m.version()
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, m.db, m.config.SchemaName, m.config.TableName)
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{CurrentVersion: version, IsDirty: dirty, Applied: applied}, nil
}

// version treats a fresh database as version 0.
func (m *Migrator) version() (uint, bool, error) {
	v, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	err := errors.Join(srcErr, dbErr)
	if cerr := m.db.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		return fmt.Errorf("close migrator: %w", err)
	}
	return nil
}

func appliedMigrations(ctx context.Context, conn *sql.DB, schema, table string) ([]AppliedMigration, error) {
	rows, err := conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT version, dirty FROM %s.%s ORDER BY version ASC`, schema, table))
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := []AppliedMigration{}
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.Dirty); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied = append(applied, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return applied, nil
}

// WithMigrator opens a migrator, hands it to fn and closes it afterwards.
func WithMigrator(config *MigrationConfig, logger *slog.Logger, fn func(*Migrator) error) error {
	m, err := NewMigrator(config, logger)
	if err != nil {
		return err
	}
	err = fn(m)
	if cerr := m.Close(); cerr != nil {
		logger.Warn("migrator close failed", slog.String("error", cerr.Error()))
	}
	return err
}

// RunMigrationsWithRetry applies migrations, retrying while the database
// comes up. Attempt n waits 2n seconds before starting.
func RunMigrationsWithRetry(ctx context.Context, config *MigrationConfig, logger *slog.Logger, maxRetries int) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(2*(attempt-1)) * time.Second
			logger.InfoContext(ctx, "retrying migrations",
				slog.Int("attempt", attempt), slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return fmt.Errorf("migrations cancelled: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		lastErr = WithMigrator(config, logger, func(m *Migrator) error { return m.Up(ctx) })
		if lastErr == nil {
			return nil
		}
		logger.ErrorContext(ctx, "migration attempt failed",
			slog.Int("attempt", attempt), slog.String("error", lastErr.Error()))
	}
	return fmt.Errorf("migrations failed after %d attempts: %w", maxRetries, lastErr)
}
