// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/mfg-erp/internal/adapters/db"
	"github.com/ammerola/mfg-erp/internal/adapters/messaging"
	redis_a "github.com/ammerola/mfg-erp/internal/adapters/redis_adapter"
	"github.com/ammerola/mfg-erp/internal/adapters/storage"
	"github.com/ammerola/mfg-erp/internal/core/ports"
	"github.com/ammerola/mfg-erp/internal/core/services"
	"github.com/ammerola/mfg-erp/internal/pkg/config"
)

// Core holds the adapters and services shared by the API and the worker.
type Core struct {
	Database    *db.Database
	RedisClient *redis.Client
	Cache       ports.CacheRepository
	Publisher   ports.AlertPublisher
	Notifier    *services.ReorderNotifier
	Ledger      *services.LedgerService
	Catalog     *services.CatalogService
	Orders      *services.PurchaseOrderService
	Dashboard   *services.DashboardService
}

// NewCore connects to postgres and redis, runs migrations when enabled and
// builds the services.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	c := &Core{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	dbConfig := DatabaseConfig(cfg)

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{DatabaseURL: cfg.GetDatabaseURL()}, logger, 3); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	database, err := db.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.Database = database

	logger.Info("connecting to Redis", slog.String("addr", cfg.GetRedisAddr()))

	c.RedisClient = redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
	if err := c.RedisClient.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.wire(cfg, logger)

	return c, nil
}

// NewCoreFrom builds the services over connections opened by the caller.
// Closing the core closes them.
func NewCoreFrom(database *db.Database, client *redis.Client, cfg *config.Config, logger *slog.Logger) *Core {
	c := &Core{Database: database, RedisClient: client}
	c.wire(cfg, logger)
	return c
}

func (c *Core) wire(cfg *config.Config, logger *slog.Logger) {
	database := c.Database

	c.Cache = redis_a.NewCache(c.RedisClient, logger)
	invalidator := redis_a.NewCacheManager(c.Cache, logger)

	if cfg.Kafka.Enabled {
		logger.Info("publishing reorder alerts to Kafka",
			slog.Any("brokers", cfg.Kafka.Brokers),
			slog.String("topic", cfg.Kafka.LowStockTopic))
		c.Publisher = messaging.NewKafkaAlertPublisher(messaging.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.LowStockTopic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, logger)
	} else {
		c.Publisher = messaging.NewLogAlertPublisher(logger)
	}
	c.Notifier = services.NewReorderNotifier(c.Publisher, c.Cache, cfg.Cache.AlertWindow, logger)

	inventoryRepo := db.NewInventoryRepository(database, logger)
	productRepo := db.NewProductRepository(database, logger)

	c.Ledger = services.NewLedgerService(inventoryRepo, invalidator, c.Notifier, logger)
	c.Catalog = services.NewCatalogService(services.CatalogRepositories{
		Products:   productRepo,
		Categories: db.NewCategoryRepository(database, logger),
		Suppliers:  db.NewSupplierRepository(database, logger),
		Warehouses: db.NewWarehouseRepository(database, logger),
		Inventory:  inventoryRepo,
	}, c.Cache, invalidator, logger).WithProductTTL(cfg.Cache.ProductTTL)
	c.Orders = services.NewPurchaseOrderService(db.NewPurchaseOrderRepository(database, logger), productRepo, invalidator, logger)
	c.Dashboard = services.NewDashboardService(db.NewDashboardRepository(database, logger), c.Ledger, c.Cache, logger).
		WithTTL(cfg.Cache.DashboardTTL)
}

// Close releases every connection the core opened.
func (c *Core) Close() {
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.Database != nil {
		c.Database.Close()
	}
}

// AsynqRedisOpt returns the connection asynq clients and servers share.
func AsynqRedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
}

// NewObjectStorage connects to the export bucket.
func NewObjectStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage.S3Storage, error) {
	return storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
}

// DatabaseConfig maps the database settings onto the pool configuration.
func DatabaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}
