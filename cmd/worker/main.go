// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/app"
	"github.com/ammerola/mfg-erp/internal/pkg/config"
	"github.com/ammerola/mfg-erp/internal/pkg/logger"
	"github.com/ammerola/mfg-erp/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	// The API applies migrations; the worker only connects.
	cfg.Database.AutoMigrate = false
	cfg.Database.MaxConnections = 10
	cfg.Database.MinConnections = 2

	ctx := context.Background()
	core, err := app.NewCore(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer core.Close()

	objectStorage, err := app.NewObjectStorage(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisOpt := app.AsynqRedisOpt(cfg)
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()
	mux.Use(taskContext)

	notifications := workers.NewNotificationProcessor(core.Ledger, core.Notifier, slogger)
	mux.HandleFunc(workers.TypeLowStockScan, notifications.ScanLowStock)

	analytics := workers.NewAnalyticsProcessor(core.Dashboard, slogger)
	mux.HandleFunc(workers.TypeDashboardRefresh, analytics.RefreshDashboard)

	excel := workers.NewExcelProcessor(core.Ledger, objectStorage, cfg.Jobs.ExportURLExpiry, slogger)
	mux.HandleFunc(workers.TypeInventoryExport, excel.ExportInventory)
	mux.HandleFunc(workers.TypeStockCountImport, excel.ImportStockCount)

	pdf := workers.NewPDFProcessor(core.Orders, slogger)
	mux.HandleFunc(workers.TypeInvoiceImport, pdf.ProcessInvoice)

	cleanup := workers.NewCleanupProcessor(workers.UploadDir(cfg.FileProcessing.TempDir), cfg.FileProcessing.TempFileMaxAge, slogger)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanup.CleanupTempFiles)

	scheduler, err := newScheduler(redisOpt, cfg, slogger)
	if err != nil {
		slogger.Error("failed to register periodic jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if err := scheduler.Start(); err != nil {
		slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newScheduler registers the periodic jobs. An empty schedule disables
// its job.
func newScheduler(redisOpt asynq.RedisClientOpt, cfg *config.Config, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   newAsynqLogger(logger),
		Location: time.UTC,
	})

	jobs := []struct {
		cron string
		task *asynq.Task
	}{
		{cfg.Jobs.LowStockScanSchedule, workers.NewLowStockScanTask()},
		{cfg.Jobs.DashboardRefreshSchedule, workers.NewDashboardRefreshTask()},
		{cfg.Jobs.CleanupSchedule, workers.NewCleanupTask()},
	}
	for _, job := range jobs {
		if job.cron == "" {
			continue
		}
		entryID, err := scheduler.Register(job.cron, job.task)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", job.task.Type(), err)
		}
		logger.Info("periodic job registered",
			slog.String("type", job.task.Type()),
			slog.String("schedule", job.cron),
			slog.String("entry_id", entryID))
	}
	return scheduler, nil
}

// taskContext tags the handler context with the task type and id so that
// log records carry them.
func taskContext(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		return next.ProcessTask(logger.WithTask(ctx, t.Type(), id), t)
	})
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.Int("retried", retried),
		slog.Int("max_retry", maxRetry),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
