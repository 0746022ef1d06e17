// internal/workers/analytics_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// AnalyticsProcessor keeps the cached dashboard views warm
type AnalyticsProcessor struct {
	dashboard ports.DashboardService
	logger    *slog.Logger
}

// NewAnalyticsProcessor creates a new analytics processor
func NewAnalyticsProcessor(dashboard ports.DashboardService, logger *slog.Logger) *AnalyticsProcessor {
	return &AnalyticsProcessor{
		dashboard: dashboard,
		logger:    logger.With(slog.String("processor", "analytics")),
	}
}

// RefreshDashboard recomputes the dashboard views and replaces the cached
// copies.
func (p *AnalyticsProcessor) RefreshDashboard(ctx context.Context, t *asynq.Task) error {
	if err := p.dashboard.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh dashboard: %w", err)
	}

	p.logger.InfoContext(ctx, "dashboard refreshed")
	return nil
}
