// internal/workers/pdf_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// PDFProcessor turns supplier invoice PDFs into pending purchase orders
type PDFProcessor struct {
	orders ports.PurchaseOrderService
	logger *slog.Logger
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(orders ports.PurchaseOrderService, logger *slog.Logger) *PDFProcessor {
	return &PDFProcessor{
		orders: orders,
		logger: logger.With(slog.String("processor", "pdf")),
	}
}

// ProcessInvoice extracts the invoice lines of an uploaded PDF and creates
// a pending purchase order for the supplier.
func (p *PDFProcessor) ProcessInvoice(ctx context.Context, t *asynq.Task) error {
	var payload InvoicePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing invoice PDF",
		slog.String("job_id", payload.JobID),
		slog.Int64("supplier_id", payload.SupplierID))

	text, err := p.extractText(ctx, payload.FilePath)
	if err != nil {
		removeUpload(ctx, p.logger, payload.FilePath)
		return fmt.Errorf("failed to extract invoice text: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.importLines(ctx, t, payload, ParseInvoiceLines(text)); err != nil {
		if errors.Is(err, asynq.SkipRetry) {
			removeUpload(ctx, p.logger, payload.FilePath)
		}
		return err
	}

	removeUpload(ctx, p.logger, payload.FilePath)
	return nil
}

func (p *PDFProcessor) importLines(ctx context.Context, t *asynq.Task, payload InvoicePayload, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("no invoice lines found: %w", asynq.SkipRetry)
	}

	notes := payload.Notes
	if notes == "" {
		notes = "Imported from supplier invoice"
	}

	result, err := p.orders.ImportInvoice(ctx, payload.SupplierID, lines, notes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("invoice rejected: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to import invoice: %w", err)
	}

	if len(result.UnknownSKUs) > 0 {
		p.logger.WarnContext(ctx, "invoice lines skipped for unknown SKUs",
			slog.String("job_id", payload.JobID),
			slog.Any("skus", result.UnknownSKUs))
	}

	summary := InvoiceResult{
		OrderID:     result.Order.ID,
		OrderNumber: result.Order.OrderNumber,
		Lines:       len(result.Order.Items),
		UnknownSKUs: result.UnknownSKUs,
		TotalAmount: result.Order.TotalAmount.StringFixed(2),
	}
	if err := writeResult(t, summary); err != nil {
		p.logger.WarnContext(ctx, "failed to record invoice result", slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "purchase order created from invoice",
		slog.String("job_id", payload.JobID),
		slog.String("order_number", summary.OrderNumber),
		slog.Int("lines", summary.Lines),
		slog.String("total_amount", summary.TotalAmount))

	return nil
}

func (p *PDFProcessor) extractText(ctx context.Context, filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textLines []string
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}

		textLines = append(textLines, strings.Split(text, "\n")...)
	}

	return textLines, nil
}

var (
	invoiceHeaderRe = regexp.MustCompile(`(?i)\bSKU\b.*\b(QTY|QUANTITY)\b.*\bPRICE\b`)
	invoiceFooterRe = regexp.MustCompile(`(?i)^(SUB ?TOTAL|TOTAL|TAX|AMOUNT DUE)\b`)
	invoiceLineRe   = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._/-]*)\s+(\d{1,7})\s+\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,4})?|\d+(?:\.\d{1,4})?)(?:\s+\$?\s*[\d,]+\.\d{2})?$`)
	hasLetterRe     = regexp.MustCompile(`[A-Za-z]`)
)

// ParseInvoiceLines reads "SKU QTY UNIT_PRICE" lines, with an optional
// trailing line total. When a column header is present only the lines
// after it are read; a totals line ends the item section.
func ParseInvoiceLines(lines []string) []domain.InvoiceLine {
	startIdx := 0
	for i, line := range lines {
		if invoiceHeaderRe.MatchString(line) {
			startIdx = i + 1
			break
		}
	}

	var items []domain.InvoiceLine
	for _, raw := range lines[startIdx:] {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		if invoiceFooterRe.MatchString(line) {
			break
		}

		m := invoiceLineRe.FindStringSubmatch(line)
		if m == nil || !hasLetterRe.MatchString(m[1]) {
			continue
		}

		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			continue
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(m[3], ",", ""))
		if err != nil {
			continue
		}

		items = append(items, domain.InvoiceLine{
			SKU:       strings.ToUpper(m[1]),
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	return items
}
