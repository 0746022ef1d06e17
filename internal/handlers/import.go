// internal/handlers/import.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/workers"
)

// ImportHandler stages uploaded files and queues them for the worker.
type ImportHandler struct {
	responder
	queue         TaskEnqueuer
	uploadDir     string
	maxExcelBytes int64
	maxPDFBytes   int64
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(queue TaskEnqueuer, uploadDir string, maxExcelBytes, maxPDFBytes int64, logger *slog.Logger) *ImportHandler {
	l := logger.With(slog.String("handler", "import"))
	return &ImportHandler{
		responder:     responder{logger: l},
		queue:         queue,
		uploadDir:     uploadDir,
		maxExcelBytes: maxExcelBytes,
		maxPDFBytes:   maxPDFBytes,
		logger:        l,
	}
}

// ImportStockCount handles POST /api/v1/import/stock-count
func (h *ImportHandler) ImportStockCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID := uuid.NewString()
	path, ok := h.stageUpload(ctx, w, r, jobID, ".xlsx", h.maxExcelBytes)
	if !ok {
		return
	}

	task, err := workers.NewStockCountTask(workers.StockCountPayload{JobID: jobID, FilePath: path})
	if !h.enqueue(ctx, w, task, err, path) {
		return
	}

	h.logger.InfoContext(ctx, "stock count import queued", slog.String("job_id", jobID))

	h.respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:   jobID,
		Status:  "queued",
		Message: "Stock count import has been queued for processing",
	})
}

// ImportInvoice handles POST /api/v1/purchase-orders/import. The PDF is
// turned into a pending purchase order for the given supplier.
func (h *ImportHandler) ImportInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID := uuid.NewString()
	path, ok := h.stageUpload(ctx, w, r, jobID, ".pdf", h.maxPDFBytes)
	if !ok {
		return
	}

	supplierID, err := strconv.ParseInt(r.FormValue("supplierId"), 10, 64)
	if err != nil || supplierID <= 0 {
		os.Remove(path)
		h.respondError(w, http.StatusBadRequest, "supplierId is required")
		return
	}

	task, err := workers.NewInvoiceTask(workers.InvoicePayload{
		JobID:      jobID,
		FilePath:   path,
		SupplierID: supplierID,
		Notes:      r.FormValue("notes"),
	})
	if !h.enqueue(ctx, w, task, err, path) {
		return
	}

	h.logger.InfoContext(ctx, "invoice import queued",
		slog.String("job_id", jobID),
		slog.Int64("supplier_id", supplierID))

	h.respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:   jobID,
		Status:  "queued",
		Message: "Invoice import has been queued for processing",
	})
}

// stageUpload copies the "file" form field into the upload directory. It
// writes the error response itself and reports whether the caller may go on.
func (h *ImportHandler) stageUpload(ctx context.Context, w http.ResponseWriter, r *http.Request, jobID, ext string, maxBytes int64) (string, bool) {
	tooLargeMsg := fmt.Sprintf("File exceeds %d bytes", maxBytes)
	if r.ContentLength > maxBytes {
		h.respondError(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
		return "", false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, tooLargeMsg)
			return "", false
		}
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return "", false
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ext) {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Only %s files are allowed", ext))
		return "", false
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to prepare upload")
		return "", false
	}

	path := filepath.Join(h.uploadDir, jobID+strings.ToLower(ext))
	dst, err := os.Create(path)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return "", false
	}

	_, err = io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		h.logger.ErrorContext(ctx, "failed to save file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return "", false
	}

	return path, true
}

func (h *ImportHandler) enqueue(ctx context.Context, w http.ResponseWriter, task *asynq.Task, buildErr error, path string) bool {
	err := buildErr
	if err == nil {
		_, err = h.queue.EnqueueContext(ctx, task)
	}
	if err != nil {
		os.Remove(path)
		h.logger.ErrorContext(ctx, "failed to enqueue import task", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return false
	}
	return true
}
