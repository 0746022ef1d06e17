// internal/core/services/reorder.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// DefaultAlertWindow is how long a published alert suppresses repeats for
// the same product and warehouse.
const DefaultAlertWindow = 24 * time.Hour

// ReorderNotifier turns low-stock views into published alerts.
type ReorderNotifier struct {
	publisher ports.AlertPublisher
	cache     ports.CacheRepository
	window    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.ReorderNotifier = (*ReorderNotifier)(nil)

// NewReorderNotifier creates a notifier. With a nil cache every call
// publishes.
func NewReorderNotifier(publisher ports.AlertPublisher, cache ports.CacheRepository, window time.Duration, logger *slog.Logger) *ReorderNotifier {
	if window <= 0 {
		window = DefaultAlertWindow
	}
	return &ReorderNotifier{
		publisher: publisher,
		cache:     cache,
		window:    window,
		logger:    logger.With(slog.String("service", "reorder_notifier")),
		now:       time.Now,
	}
}

// Notify publishes an alert for each low-stock view not alerted within
// the window.
func (n *ReorderNotifier) Notify(ctx context.Context, views ...*domain.InventoryView) (int, error) {
	now := n.now()
	alerts := make([]domain.LowStockAlert, 0, len(views))

	for _, v := range views {
		if v == nil || !v.IsLowStock {
			continue
		}
		if !n.claim(ctx, v) {
			continue
		}
		alerts = append(alerts, domain.NewLowStockAlert(v, now))
	}

	if len(alerts) == 0 {
		return 0, nil
	}

	if err := n.publisher.PublishLowStock(ctx, alerts...); err != nil {
		n.release(ctx, alerts)
		return 0, fmt.Errorf("failed to publish low stock alerts: %w", err)
	}

	n.logger.InfoContext(ctx, "published low stock alerts",
		slog.Int("count", len(alerts)))
	return len(alerts), nil
}

func alertKey(productID, warehouseID int64) string {
	return ports.PrefixAlert.Key(strconv.FormatInt(productID, 10), strconv.FormatInt(warehouseID, 10))
}

// claim reserves the dedupe slot for a view. A cache failure lets the
// alert through.
func (n *ReorderNotifier) claim(ctx context.Context, v *domain.InventoryView) bool {
	if n.cache == nil {
		return true
	}
	ok, err := n.cache.SetNX(ctx, alertKey(v.ProductID, v.WarehouseID), v.QuantityOnHand, n.window)
	if err != nil {
		n.logger.WarnContext(ctx, "alert dedupe unavailable",
			slog.String("error", err.Error()))
		return true
	}
	return ok
}

// release frees the dedupe slots of alerts that failed to publish.
func (n *ReorderNotifier) release(ctx context.Context, alerts []domain.LowStockAlert) {
	if n.cache == nil {
		return
	}
	keys := make([]string, len(alerts))
	for i, a := range alerts {
		keys[i] = alertKey(a.ProductID, a.WarehouseID)
	}
	if err := n.cache.Delete(ctx, keys...); err != nil {
		n.logger.WarnContext(ctx, "failed to release alert dedupe keys",
			slog.String("error", err.Error()))
	}
}
