// internal/workers/excel_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// DefaultExportURLExpiry is how long an export download link stays valid.
const DefaultExportURLExpiry = 24 * time.Hour

// ExcelProcessor handles the xlsx export and stock-count import tasks
type ExcelProcessor struct {
	ledger    ports.LedgerService
	storage   ports.ObjectStorage
	urlExpiry time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewExcelProcessor creates a new Excel processor
func NewExcelProcessor(ledger ports.LedgerService, storage ports.ObjectStorage, urlExpiry time.Duration, logger *slog.Logger) *ExcelProcessor {
	if urlExpiry <= 0 {
		urlExpiry = DefaultExportURLExpiry
	}
	return &ExcelProcessor{
		ledger:    ledger,
		storage:   storage,
		urlExpiry: urlExpiry,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "excel")),
	}
}

// ExportInventory writes the requested inventory views to a workbook,
// uploads it and records a presigned download link.
func (p *ExcelProcessor) ExportInventory(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "exporting inventory",
		slog.String("job_id", payload.JobID),
		slog.Bool("low_stock_only", payload.LowStockOnly))

	views, err := p.ledger.List(ctx, domain.InventoryFilter{
		WarehouseID:  payload.WarehouseID,
		LowStockOnly: payload.LowStockOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to list inventory: %w", err)
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteInventory(&buf, views); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	now := p.now().UTC()
	key := ExportKey(payload.JobID, now)
	location, err := p.storage.Upload(ctx, key, &buf, spreadsheet.ContentType, map[string]string{
		"job-id": payload.JobID,
		"rows":   strconv.Itoa(len(views)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := p.storage.GetPresignedURL(ctx, key, p.urlExpiry)
	if err != nil {
		return fmt.Errorf("failed to presign export: %w", err)
	}

	result := ExportResult{
		Key:          key,
		Location:     location,
		DownloadURL:  url,
		Rows:         len(views),
		URLExpiresAt: now.Add(p.urlExpiry),
	}
	if err := writeResult(t, result); err != nil {
		p.logger.WarnContext(ctx, "failed to record export result", slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "inventory export ready",
		slog.String("job_id", payload.JobID),
		slog.String("key", key),
		slog.Int("rows", len(views)),
		slog.String("download_url", url))

	return nil
}

// ExportKey is the object key of an export created at now.
func ExportKey(jobID string, now time.Time) string {
	return fmt.Sprintf("exports/inventory-%s-%s.xlsx", now.UTC().Format("20060102-150405"), jobID)
}

// ImportStockCount applies each counted line of an uploaded workbook as a
// physical count. Lines that fail validation are reported and skipped.
func (p *ExcelProcessor) ImportStockCount(ctx context.Context, t *asynq.Task) error {
	start := p.now()

	var payload StockCountPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing stock count",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	counts, rowErrs, err := spreadsheet.ReadStockCountsFile(payload.FilePath)
	if err != nil {
		removeUpload(ctx, p.logger, payload.FilePath)
		return fmt.Errorf("failed to read stock count: %v: %w", err, asynq.SkipRetry)
	}

	result := StockCountResult{}
	for _, re := range rowErrs {
		result.Failed = append(result.Failed, RowFailure{Row: re.Row, Message: re.Message})
	}

	for _, c := range counts {
		_, err := p.ledger.RecordCount(ctx, c.InventoryID, c.Counted)
		switch {
		case err == nil:
			result.Applied++
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidQuantity):
			result.Failed = append(result.Failed, RowFailure{Row: c.Row, Message: err.Error()})
		default:
			// RecordCount sets an absolute quantity and is safe to replay.
			return fmt.Errorf("failed to record count for inventory %d: %w", c.InventoryID, err)
		}
	}

	result.Elapsed = p.now().Sub(start).String()
	if err := writeResult(t, result); err != nil {
		p.logger.WarnContext(ctx, "failed to record stock count result", slog.String("error", err.Error()))
	}

	removeUpload(ctx, p.logger, payload.FilePath)

	p.logger.InfoContext(ctx, "stock count applied",
		slog.String("job_id", payload.JobID),
		slog.Int("applied", result.Applied),
		slog.Int("failed", len(result.Failed)))

	return nil
}
