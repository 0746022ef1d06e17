// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/ammerola/mfg-erp/internal/adapters/db"
	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/app"
	"github.com/ammerola/mfg-erp/internal/pkg/config"
	"github.com/ammerola/mfg-erp/internal/pkg/logger"
)

func main() {
	var (
		reset    = flag.Bool("reset", false, "Truncate all tables before seeding")
		seedFile = flag.String("file", "", "Excel workbook with product rows (defaults to the demo data set)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Validate the seed data without touching the database")
		rebuild  = flag.Bool("rebuild", false, "Drop the schema and re-apply every migration before seeding")
		status   = flag.Bool("status", false, "Print the applied migrations and exit")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json")
	slog.SetDefault(slogger)

	data := DefaultDataSet()
	if *seedFile != "" {
		rows, rowErrs, err := spreadsheet.ReadSeedFile(*seedFile)
		if err != nil {
			slogger.Error("failed to read seed file", slog.String("file", *seedFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, re := range rowErrs {
			slogger.Warn("skipping invalid row", slog.Int("row", re.Row), slog.String("error", re.Message))
		}
		data = DataSet{Rows: rows}
	}

	slogger.Info("seed data loaded",
		slog.Int("rows", len(data.Rows)),
		slog.Bool("reset", *reset),
		slog.Bool("dry_run", *dryRun))

	if *dryRun {
		for _, row := range data.Rows {
			slogger.Info("would seed product",
				slog.String("sku", row.SKU),
				slog.String("warehouse", row.WarehouseCode),
				slog.Int("quantity_on_hand", row.QuantityOnHand))
		}
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	migrationCfg := &db.MigrationConfig{DatabaseURL: cfg.GetDatabaseURL()}

	if *status {
		if err := printMigrationStatus(ctx, migrationCfg, slogger); err != nil {
			slogger.Error("failed to read migration status", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if *rebuild {
		err := db.WithMigrator(migrationCfg, slogger, func(m *db.Migrator) error { return m.Drop(ctx) })
		if err != nil {
			slogger.Error("failed to drop schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if cfg.Database.AutoMigrate || *rebuild {
		if err := db.RunMigrationsWithRetry(ctx, migrationCfg, slogger, 3); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	database, err := db.NewDatabase(ctx, app.DatabaseConfig(cfg), slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	seeder := NewSeeder(database, slogger)

	if *reset {
		if err := seeder.Reset(ctx); err != nil {
			slogger.Error("failed to reset database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	summary, err := seeder.Seed(ctx, data)
	if err != nil {
		slogger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger.Info("seeding complete",
		slog.Int("products", summary.Products),
		slog.Int("inventory_rows", summary.Inventory))
}

func printMigrationStatus(ctx context.Context, cfg *db.MigrationConfig, logger *slog.Logger) error {
	return db.WithMigrator(cfg, logger, func(m *db.Migrator) error {
		st, err := m.Status(ctx)
		if err != nil {
			return err
		}
		logger.Info("schema status",
			slog.Uint64("version", uint64(st.CurrentVersion)),
			slog.Bool("dirty", st.IsDirty),
			slog.Int("applied", len(st.Applied)))
		for _, a := range st.Applied {
			logger.Info("applied migration", slog.Uint64("version", uint64(a.Version)), slog.Bool("dirty", a.Dirty))
		}
		return nil
	})
}
