// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// DashboardHandler handles dashboard operations
type DashboardHandler struct {
	responder
	dashboard ports.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard ports.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		responder: responder{logger: logger.With(slog.String("handler", "dashboard"))},
		dashboard: dashboard,
	}
}

// GetStats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.dashboard.Stats(ctx)
	if err != nil {
		h.respondServiceError(ctx, w, err, "load dashboard", "Dashboard not available")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// GetInventoryStats handles GET /api/v1/dashboard/inventory-stats
func (h *DashboardHandler) GetInventoryStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.dashboard.InventoryStats(ctx)
	if err != nil {
		h.respondServiceError(ctx, w, err, "load inventory stats", "Dashboard not available")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// GetSupplierStats handles GET /api/v1/dashboard/supplier-stats
func (h *DashboardHandler) GetSupplierStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.dashboard.SupplierStats(ctx)
	if err != nil {
		h.respondServiceError(ctx, w, err, "load supplier stats", "Dashboard not available")
		return
	}

	if stats == nil {
		stats = []domain.SupplierStats{}
	}
	h.respondJSON(w, http.StatusOK, stats)
}
