// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeLowStockScan     = "inventory:low_stock_scan"
	TypeDashboardRefresh = "dashboard:refresh"
	TypeInventoryExport  = "inventory:export"
	TypeStockCountImport = "inventory:count_import"
	TypeInvoiceImport    = "purchase_order:import_pdf"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

const (
	uploadSubdir           = "mfg-erp-uploads"
	defaultTaskRetention   = 24 * time.Hour
	defaultImportMaxRetry  = 3
	defaultPeriodicTimeout = 5 * time.Minute
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ExportPayload requests an xlsx inventory export to object storage.
type ExportPayload struct {
	JobID        string `json:"job_id"`
	WarehouseID  *int64 `json:"warehouse_id,omitempty"`
	LowStockOnly bool   `json:"low_stock_only,omitempty"`
}

// ExportResult is written as the task result of a finished export.
type ExportResult struct {
	Key          string    `json:"key"`
	Location     string    `json:"location"`
	DownloadURL  string    `json:"download_url"`
	Rows         int       `json:"rows"`
	URLExpiresAt time.Time `json:"url_expires_at"`
}

// StockCountPayload points at an uploaded stock-count workbook.
type StockCountPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// StockCountResult summarizes an applied stock-count workbook.
type StockCountResult struct {
	Applied int          `json:"applied"`
	Failed  []RowFailure `json:"failed,omitempty"`
	Elapsed string       `json:"elapsed"`
}

// RowFailure is a workbook line that was not applied.
type RowFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// InvoicePayload points at an uploaded supplier invoice PDF.
type InvoicePayload struct {
	JobID      string `json:"job_id"`
	FilePath   string `json:"file_path"`
	SupplierID int64  `json:"supplier_id"`
	Notes      string `json:"notes,omitempty"`
}

// InvoiceResult summarizes the purchase order created from an invoice.
type InvoiceResult struct {
	OrderID     int64    `json:"order_id"`
	OrderNumber string   `json:"order_number"`
	Lines       int      `json:"lines"`
	UnknownSKUs []string `json:"unknown_skus,omitempty"`
	TotalAmount string   `json:"total_amount"`
}

// UploadDir is the directory uploads are staged in before a worker picks
// them up. Cleanup only touches this directory.
func UploadDir(tempDir string) string {
	return filepath.Join(tempDir, uploadSubdir)
}

// NewExportTask builds an inventory export task.
func NewExportTask(p ExportPayload) (*asynq.Task, error) {
	return newTask(TypeInventoryExport, p, p.JobID,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(defaultImportMaxRetry),
		asynq.Timeout(10*time.Minute))
}

// NewStockCountTask builds a stock-count import task.
func NewStockCountTask(p StockCountPayload) (*asynq.Task, error) {
	return newTask(TypeStockCountImport, p, p.JobID,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(defaultImportMaxRetry))
}

// NewInvoiceTask builds a supplier invoice import task.
func NewInvoiceTask(p InvoicePayload) (*asynq.Task, error) {
	return newTask(TypeInvoiceImport, p, p.JobID,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(defaultImportMaxRetry))
}

// NewLowStockScanTask builds the periodic low stock scan.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TypeLowStockScan, nil,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(1),
		asynq.Timeout(defaultPeriodicTimeout))
}

// NewDashboardRefreshTask builds the periodic dashboard refresh.
func NewDashboardRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeDashboardRefresh, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(defaultPeriodicTimeout))
}

// NewCleanupTask builds the periodic temp file cleanup.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupTempFiles, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(0))
}

func newTask(taskType string, payload any, jobID string, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	if jobID != "" {
		opts = append(opts, asynq.TaskID(jobID))
	}
	opts = append(opts, asynq.Retention(defaultTaskRetention))
	return asynq.NewTask(taskType, b, opts...), nil
}

// writeResult stores v as the task result when the task runs on a server.
func writeResult(t *asynq.Task, v any) error {
	rw := t.ResultWriter()
	if rw == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := rw.Write(b); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
