// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
	"github.com/ammerola/mfg-erp/internal/workers"
)

// TaskEnqueuer queues background work. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JSONExportResponse is the body of a JSON inventory export.
type JSONExportResponse struct {
	Inventory []*domain.InventoryView `json:"inventory"`
	Metadata  ExportMetadata          `json:"metadata"`
}

// ExportMetadata describes an export.
type ExportMetadata struct {
	ExportDate   time.Time `json:"exportDate"`
	TotalItems   int       `json:"totalItems"`
	WarehouseID  *int64    `json:"warehouseId,omitempty"`
	LowStockOnly bool      `json:"lowStockOnly"`
}

// JobAccepted acknowledges a queued background job.
type JobAccepted struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ExportHandler handles export operations
type ExportHandler struct {
	responder
	ledger ports.LedgerService
	queue  TaskEnqueuer
	logger *slog.Logger
	now    func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(ledger ports.LedgerService, queue TaskEnqueuer, logger *slog.Logger) *ExportHandler {
	l := logger.With(slog.String("handler", "export"))
	return &ExportHandler{
		responder: responder{logger: l},
		ledger:    ledger,
		queue:     queue,
		logger:    l,
		now:       time.Now,
	}
}

// ExportInventory handles GET /api/v1/export/inventory?format=xlsx|json
func (h *ExportHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "json" {
		h.respondError(w, http.StatusBadRequest, "format must be xlsx or json")
		return
	}

	filter, err := parseInventoryFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.ledger.List(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "retrieve inventory data", inventoryNotFound)
		return
	}
	if views == nil {
		views = []*domain.InventoryView{}
	}

	now := h.now()
	if format == "json" {
		h.respondJSON(w, http.StatusOK, JSONExportResponse{
			Inventory: views,
			Metadata: ExportMetadata{
				ExportDate:   now.UTC(),
				TotalItems:   len(views),
				WarehouseID:  filter.WarehouseID,
				LowStockOnly: filter.LowStockOnly,
			},
		})
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteInventory(&buf, views); err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", now.Format("20060102_150405"))
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "inventory export completed",
		slog.Int("total_rows", len(views)),
		slog.String("filename", filename))
}

// ExportInventoryAsync handles POST /api/v1/export/inventory/async. The
// workbook is uploaded to object storage and its link is kept as the job
// result.
func (h *ExportHandler) ExportInventoryAsync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseInventoryFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.NewString()
	task, err := workers.NewExportTask(workers.ExportPayload{
		JobID:        jobID,
		WarehouseID:  filter.WarehouseID,
		LowStockOnly: filter.LowStockOnly,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build export task", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue export job")
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue export task", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue export job")
		return
	}

	h.logger.InfoContext(ctx, "inventory export queued",
		slog.String("job_id", jobID),
		slog.String("queue", info.Queue))

	h.respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:   jobID,
		Status:  "queued",
		Message: "Inventory export has been queued for processing",
	})
}
