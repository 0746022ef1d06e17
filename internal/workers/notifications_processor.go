// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// NotificationProcessor publishes reorder alerts for low stock records
type NotificationProcessor struct {
	ledger   ports.LedgerService
	notifier ports.ReorderNotifier
	logger   *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(ledger ports.LedgerService, notifier ports.ReorderNotifier, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		ledger:   ledger,
		notifier: notifier,
		logger:   logger.With(slog.String("processor", "notification")),
	}
}

// ScanLowStock finds every low stock record and hands it to the notifier,
// which drops records already alerted inside its window.
func (p *NotificationProcessor) ScanLowStock(ctx context.Context, t *asynq.Task) error {
	views, err := p.ledger.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("failed to list low stock: %w", err)
	}

	if len(views) == 0 {
		p.logger.DebugContext(ctx, "no low stock records")
		return nil
	}

	published, err := p.notifier.Notify(ctx, views...)
	if err != nil {
		return fmt.Errorf("failed to publish low stock alerts: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock scan completed",
		slog.Int("low_stock", len(views)),
		slog.Int("published", published))

	return nil
}
