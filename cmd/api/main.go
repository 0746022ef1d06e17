// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/app"
	"github.com/ammerola/mfg-erp/internal/handlers"
	"github.com/ammerola/mfg-erp/internal/handlers/middleware"
	"github.com/ammerola/mfg-erp/internal/pkg/config"
	"github.com/ammerola/mfg-erp/internal/pkg/logger"
	"github.com/ammerola/mfg-erp/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting manufacturing ERP API",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(ctx, cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	core             *app.Core
	asynqClient      *asynq.Client
	asynqInspector   *asynq.Inspector
	inventoryHandler *handlers.InventoryHandler
	productHandler   *handlers.ProductHandler
	referenceHandler *handlers.ReferenceHandler
	orderHandler     *handlers.PurchaseOrderHandler
	dashboardHandler *handlers.DashboardHandler
	exportHandler    *handlers.ExportHandler
	importHandler    *handlers.ImportHandler
	jobHandler       *handlers.JobHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.core != nil {
		d.core.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	core, err := app.NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps := &dependencies{core: core}

	logger.Info("initializing Asynq client")
	redisOpt := app.AsynqRedisOpt(cfg)
	deps.asynqClient = asynq.NewClient(redisOpt)
	deps.asynqInspector = asynq.NewInspector(redisOpt)

	uploadDir := workers.UploadDir(cfg.FileProcessing.TempDir)
	maxExcel := int64(cfg.FileProcessing.ExcelMaxSizeMB) << 20
	maxPDF := int64(cfg.FileProcessing.PDFMaxSizeMB) << 20

	deps.inventoryHandler = handlers.NewInventoryHandler(core.Ledger, logger)
	deps.productHandler = handlers.NewProductHandler(core.Catalog, logger)
	deps.referenceHandler = handlers.NewReferenceHandler(core.Catalog, logger)
	deps.orderHandler = handlers.NewPurchaseOrderHandler(core.Orders, logger)
	deps.dashboardHandler = handlers.NewDashboardHandler(core.Dashboard, logger)
	deps.exportHandler = handlers.NewExportHandler(core.Ledger, deps.asynqClient, logger)
	deps.importHandler = handlers.NewImportHandler(deps.asynqClient, uploadDir, maxExcel, maxPDF, logger)
	deps.jobHandler = handlers.NewJobHandler(deps.asynqInspector, logger)
	deps.healthHandler = handlers.NewHealthHandler(core.Database, core.RedisClient, deps.asynqInspector, cfg, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(ctx context.Context, cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	mws := []middleware.Middleware{
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	if cfg.Security.RateLimitRequests > 0 {
		mws = append(mws, middleware.RateLimit(ctx, cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}
	mws = append(mws, middleware.Compression, middleware.Timeout(cfg.Server.WriteTimeout))

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"
	route := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(fmt.Sprintf("%s %s%s", method, apiV1, path), h)
	}

	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /health/live", deps.healthHandler.Liveness)
		mux.HandleFunc("GET /health/ready", deps.healthHandler.Readiness)
	}

	// Inventory ledger
	inv := deps.inventoryHandler
	route("GET", "/inventory", inv.ListInventory)
	route("GET", "/inventory/low-stock", inv.LowStock)
	route("GET", "/inventory/{id}", inv.GetInventory)
	route("POST", "/inventory", inv.CreateInventory)
	route("PUT", "/inventory/{id}", inv.UpdateInventory)
	route("POST", "/inventory/transfer", inv.Transfer)
	route("POST", "/inventory/{id}/count", inv.RecordCount)

	// Catalog
	prod := deps.productHandler
	route("GET", "/products", prod.ListProducts)
	route("GET", "/products/{id}", prod.GetProduct)
	route("POST", "/products", prod.CreateProduct)
	route("PUT", "/products/{id}", prod.UpdateProduct)
	route("DELETE", "/products/{id}", prod.DeleteProduct)

	ref := deps.referenceHandler
	route("GET", "/categories", ref.ListCategories)
	route("GET", "/categories/{id}", ref.GetCategory)
	route("POST", "/categories", ref.CreateCategory)
	route("PUT", "/categories/{id}", ref.UpdateCategory)
	route("DELETE", "/categories/{id}", ref.DeleteCategory)
	route("GET", "/suppliers", ref.ListSuppliers)
	route("GET", "/suppliers/{id}", ref.GetSupplier)
	route("POST", "/suppliers", ref.CreateSupplier)
	route("PUT", "/suppliers/{id}", ref.UpdateSupplier)
	route("DELETE", "/suppliers/{id}", ref.DeleteSupplier)
	route("GET", "/warehouses", ref.ListWarehouses)
	route("GET", "/warehouses/{id}", ref.GetWarehouse)
	route("POST", "/warehouses", ref.CreateWarehouse)
	route("PUT", "/warehouses/{id}", ref.UpdateWarehouse)
	route("DELETE", "/warehouses/{id}", ref.DeleteWarehouse)

	// Purchasing
	po := deps.orderHandler
	route("GET", "/purchase-orders", po.ListPurchaseOrders)
	route("GET", "/purchase-orders/{id}", po.GetPurchaseOrder)
	route("POST", "/purchase-orders", po.CreatePurchaseOrder)
	route("PUT", "/purchase-orders/{id}/status", po.UpdateStatus)
	route("DELETE", "/purchase-orders/{id}", po.DeletePurchaseOrder)
	route("POST", "/purchase-orders/import", deps.importHandler.ImportInvoice)

	// Reporting
	route("GET", "/dashboard/stats", deps.dashboardHandler.GetStats)
	route("GET", "/dashboard/inventory-stats", deps.dashboardHandler.GetInventoryStats)
	route("GET", "/dashboard/supplier-stats", deps.dashboardHandler.GetSupplierStats)

	// Files and background jobs
	route("GET", "/export/inventory", deps.exportHandler.ExportInventory)
	route("POST", "/export/inventory/async", deps.exportHandler.ExportInventoryAsync)
	route("POST", "/import/stock-count", deps.importHandler.ImportStockCount)
	route("GET", "/jobs/{id}", deps.jobHandler.GetJob)
}
