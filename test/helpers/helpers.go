// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mfg-erp/internal/adapters/db"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container with the schema migrated
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_erp",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_erp",
		SSLMode:            "disable",
		MaxConnections:     10,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	err = db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
	}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           "test_erp",
			SSLMode:        "disable",
			MaxConnections: 10,
			MinConnections: 2,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			PoolSize: 10,
		},
		Kafka: config.KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			LowStockTopic: "inventory.low-stock",
		},
		Cache: config.CacheConfig{
			DashboardTTL: 5 * time.Minute,
			ProductTTL:   10 * time.Minute,
			AlertWindow:  24 * time.Hour,
		},
		FileProcessing: config.FileProcessingConfig{
			PDFMaxSizeMB:      50,
			ExcelMaxSizeMB:    100,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           os.TempDir(),
			TempFileMaxAge:    24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestRecord creates an inventory record: 500 on hand, 50 reserved
// at 12.50 each.
func CreateTestRecord(overrides ...func(*domain.InventoryRecord)) *domain.InventoryRecord {
	rec := &domain.InventoryRecord{
		ID:               1,
		ProductID:        1,
		WarehouseID:      1,
		QuantityOnHand:   500,
		QuantityReserved: 50,
		UnitCost:         decimal.RequireFromString("12.50"),
		LastStockUpdate:  time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(rec)
	}

	return rec
}

// CreateTestEntry wraps a record with its product and warehouse.
func CreateTestEntry(overrides ...func(*domain.InventoryRecord)) *domain.InventoryEntry {
	rec := CreateTestRecord(overrides...)
	return &domain.InventoryEntry{
		Record: *rec,
		Product: &domain.ProductRef{
			ID:           rec.ProductID,
			Name:         "Steel Bracket",
			SKU:          "BRK-001",
			ReorderLevel: 25,
		},
		WarehouseName: fmt.Sprintf("Warehouse %d", rec.WarehouseID),
	}
}

// CreateTestProduct creates a test product
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	p := &domain.Product{
		ID:            1,
		SKU:           "BRK-001",
		Name:          "Steel Bracket",
		Description:   "Galvanised mounting bracket",
		CategoryID:    1,
		UnitPrice:     decimal.RequireFromString("19.99"),
		ReorderLevel:  25,
		UnitOfMeasure: "EA",
		IsActive:      true,
	}

	for _, override := range overrides {
		override(p)
	}

	return p
}

// CreateTestWarehouse creates a test warehouse
func CreateTestWarehouse(overrides ...func(*domain.Warehouse)) *domain.Warehouse {
	w := &domain.Warehouse{
		ID:       1,
		Code:     "WH-MAIN",
		Name:     "Main Warehouse",
		City:     "Detroit",
		State:    "MI",
		Capacity: 10000,
		IsActive: true,
	}

	for _, override := range overrides {
		override(w)
	}

	return w
}

// CreateTestPurchaseOrder creates a pending order with two lines
func CreateTestPurchaseOrder(overrides ...func(*domain.PurchaseOrder)) *domain.PurchaseOrder {
	po := &domain.PurchaseOrder{
		SupplierID: 1,
		Notes:      "restock",
		Items: []domain.PurchaseOrderItem{
			{ProductID: 1, Quantity: 100, UnitPrice: decimal.RequireFromString("12.50")},
			{ProductID: 2, Quantity: 10, UnitPrice: decimal.RequireFromString("3.25")},
		},
	}

	for _, override := range overrides {
		override(po)
	}

	return po
}

// Fixture is reference data stored in a test database.
type Fixture struct {
	Category   *domain.Category
	Supplier   *domain.Supplier
	Product    *domain.Product
	Warehouses []*domain.Warehouse
}

// SeedFixture stores a category, supplier, product and three warehouses.
func SeedFixture(t *testing.T, database *db.Database) *Fixture {
	t.Helper()

	ctx := context.Background()
	logger := TestLogger()

	category := &domain.Category{Name: "Hardware", IsActive: true}
	require.NoError(t, db.NewCategoryRepository(database, logger).Create(ctx, category))

	supplier := &domain.Supplier{Name: "Acme Metals", Email: "orders@acme.test", IsActive: true}
	require.NoError(t, db.NewSupplierRepository(database, logger).Create(ctx, supplier))

	product := CreateTestProduct(func(p *domain.Product) {
		p.ID = 0
		p.CategoryID = category.ID
		p.SupplierID = &supplier.ID
	})
	require.NoError(t, db.NewProductRepository(database, logger).Create(ctx, product))

	warehouses := make([]*domain.Warehouse, 0, 3)
	repo := db.NewWarehouseRepository(database, logger)
	for i := 1; i <= 3; i++ {
		w := CreateTestWarehouse(func(w *domain.Warehouse) {
			w.ID = 0
			w.Code = fmt.Sprintf("WH-%02d", i)
			w.Name = fmt.Sprintf("Warehouse %d", i)
		})
		require.NoError(t, repo.Create(ctx, w))
		warehouses = append(warehouses, w)
	}

	return &Fixture{
		Category:   category,
		Supplier:   supplier,
		Product:    product,
		Warehouses: warehouses,
	}
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		TRUNCATE TABLE purchase_order_items, purchase_orders, inventory,
			products, warehouses, suppliers, categories
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
