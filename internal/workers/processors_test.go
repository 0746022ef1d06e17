package workers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/workers"
	"github.com/ammerola/mfg-erp/test/helpers"
	"github.com/ammerola/mfg-erp/test/mocks"
)

func lowView(id int64) *domain.InventoryView {
	return &domain.InventoryView{
		ID:             id,
		ProductID:      id,
		SKU:            "BRK-001",
		WarehouseID:    1,
		QuantityOnHand: 10,
		ReorderLevel:   25,
		IsLowStock:     true,
		UnitCost:       decimal.RequireFromString("12.50"),
		TotalValue:     decimal.RequireFromString("125.00"),
	}
}

func TestNotificationProcessor_ScanLowStock(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*mocks.MockLedgerService, *mocks.MockReorderNotifier)
		expectError bool
	}{
		{
			name: "publishes_low_stock_records",
			setupMocks: func(ledger *mocks.MockLedgerService, notifier *mocks.MockReorderNotifier) {
				v1, v2 := lowView(1), lowView(2)
				ledger.EXPECT().LowStock(gomock.Any()).Return([]*domain.InventoryView{v1, v2}, nil)
				notifier.EXPECT().Notify(gomock.Any(), v1, v2).Return(2, nil)
			},
		},
		{
			name: "nothing_low",
			setupMocks: func(ledger *mocks.MockLedgerService, _ *mocks.MockReorderNotifier) {
				ledger.EXPECT().LowStock(gomock.Any()).Return(nil, nil)
			},
		},
		{
			name: "ledger_failure",
			setupMocks: func(ledger *mocks.MockLedgerService, _ *mocks.MockReorderNotifier) {
				ledger.EXPECT().LowStock(gomock.Any()).Return(nil, domain.ErrStorageUnavailable)
			},
			expectError: true,
		},
		{
			name: "publish_failure",
			setupMocks: func(ledger *mocks.MockLedgerService, notifier *mocks.MockReorderNotifier) {
				v := lowView(1)
				ledger.EXPECT().LowStock(gomock.Any()).Return([]*domain.InventoryView{v}, nil)
				notifier.EXPECT().Notify(gomock.Any(), v).Return(0, errors.New("broker down"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledger := mocks.NewMockLedgerService(ctrl)
			notifier := mocks.NewMockReorderNotifier(ctrl)
			tt.setupMocks(ledger, notifier)

			p := workers.NewNotificationProcessor(ledger, notifier, helpers.TestLogger())
			err := p.ScanLowStock(context.Background(), workers.NewLowStockScanTask())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyticsProcessor_RefreshDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	dashboard := mocks.NewMockDashboardService(ctrl)
	p := workers.NewAnalyticsProcessor(dashboard, helpers.TestLogger())

	dashboard.EXPECT().Refresh(gomock.Any()).Return(nil)
	assert.NoError(t, p.RefreshDashboard(context.Background(), workers.NewDashboardRefreshTask()))

	dashboard.EXPECT().Refresh(gomock.Any()).Return(errors.New("redis down"))
	err := p.RefreshDashboard(context.Background(), workers.NewDashboardRefreshTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestExcelProcessor_ExportInventory(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	storage := mocks.NewMockObjectStorage(ctrl)
	p := workers.NewExcelProcessor(ledger, storage, time.Hour, helpers.TestLogger())

	warehouseID := int64(2)
	task, err := workers.NewExportTask(workers.ExportPayload{JobID: "job-1", WarehouseID: &warehouseID})
	require.NoError(t, err)

	ledger.EXPECT().
		List(gomock.Any(), domain.InventoryFilter{WarehouseID: &warehouseID}).
		Return([]*domain.InventoryView{lowView(1), lowView(2)}, nil)

	var uploadedKey string
	storage.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), spreadsheet.ContentType, gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, r io.Reader, _ string, meta map[string]string) (string, error) {
			uploadedKey = key
			assert.Equal(t, "job-1", meta["job-id"])
			assert.Equal(t, "2", meta["rows"])

			body, err := io.ReadAll(r)
			require.NoError(t, err)
			file, err := xlsx.OpenBinary(body)
			require.NoError(t, err)
			assert.Equal(t, 3, file.Sheets[0].MaxRow)
			return "https://s3.local/erp-exports/" + key, nil
		})
	storage.EXPECT().
		GetPresignedURL(gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(_ context.Context, key string, _ time.Duration) (string, error) {
			assert.Equal(t, uploadedKey, key)
			return "https://s3.local/signed", nil
		})

	require.NoError(t, p.ExportInventory(context.Background(), task))
	assert.True(t, strings.HasPrefix(uploadedKey, "exports/inventory-"))
	assert.True(t, strings.HasSuffix(uploadedKey, "-job-1.xlsx"))
}

func TestExcelProcessor_ExportInventory_UploadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	storage := mocks.NewMockObjectStorage(ctrl)
	p := workers.NewExcelProcessor(ledger, storage, 0, helpers.TestLogger())

	task, err := workers.NewExportTask(workers.ExportPayload{JobID: "job-2", LowStockOnly: true})
	require.NoError(t, err)

	ledger.EXPECT().List(gomock.Any(), domain.InventoryFilter{LowStockOnly: true}).Return(nil, nil)
	storage.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("access denied"))

	err = p.ExportInventory(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestExcelProcessor_BadPayload(t *testing.T) {
	p := workers.NewExcelProcessor(nil, nil, 0, helpers.TestLogger())

	err := p.ExportInventory(context.Background(), asynq.NewTask(workers.TypeInventoryExport, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = p.ImportStockCount(context.Background(), asynq.NewTask(workers.TypeStockCountImport, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func writeCountFile(t *testing.T, lines []spreadsheet.StockCount) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteStockCountTemplate(&buf, lines))
	path := filepath.Join(t.TempDir(), "count.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestExcelProcessor_ImportStockCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	p := workers.NewExcelProcessor(ledger, nil, 0, helpers.TestLogger())

	path := writeCountFile(t, []spreadsheet.StockCount{
		{InventoryID: 1, Counted: 40},
		{InventoryID: 2, Counted: 5},
		{InventoryID: 3, Counted: 7},
	})
	task, err := workers.NewStockCountTask(workers.StockCountPayload{JobID: "job-3", FilePath: path})
	require.NoError(t, err)

	gomock.InOrder(
		ledger.EXPECT().RecordCount(gomock.Any(), int64(1), 40).Return(lowView(1), nil),
		ledger.EXPECT().RecordCount(gomock.Any(), int64(2), 5).Return(nil, domain.ErrNotFound),
		ledger.EXPECT().RecordCount(gomock.Any(), int64(3), 7).Return(lowView(3), nil),
	)

	require.NoError(t, p.ImportStockCount(context.Background(), task))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "upload should be removed once applied")
}

func TestExcelProcessor_ImportStockCount_StorageFailureRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	p := workers.NewExcelProcessor(ledger, nil, 0, helpers.TestLogger())

	path := writeCountFile(t, []spreadsheet.StockCount{{InventoryID: 1, Counted: 40}})
	task, err := workers.NewStockCountTask(workers.StockCountPayload{JobID: "job-4", FilePath: path})
	require.NoError(t, err)

	ledger.EXPECT().RecordCount(gomock.Any(), int64(1), 40).
		Return(nil, domain.ErrStorageUnavailable)

	err = p.ImportStockCount(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "upload is kept for the retry")
}

func TestExcelProcessor_ImportStockCount_MissingFile(t *testing.T) {
	p := workers.NewExcelProcessor(nil, nil, 0, helpers.TestLogger())
	task, err := workers.NewStockCountTask(workers.StockCountPayload{
		JobID:    "job-5",
		FilePath: filepath.Join(t.TempDir(), "gone.xlsx"),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, p.ImportStockCount(context.Background(), task), asynq.SkipRetry)
}

func TestCleanupProcessor_CleanupTempFiles(t *testing.T) {
	dir := workers.UploadDir(t.TempDir())
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stale := filepath.Join(dir, "stale.xlsx")
	fresh := filepath.Join(dir, "fresh.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("y"), 0o600))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	p := workers.NewCleanupProcessor(dir, 24*time.Hour, helpers.TestLogger())
	require.NoError(t, p.CleanupTempFiles(context.Background(), workers.NewCleanupTask()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanupProcessor_MissingDir(t *testing.T) {
	p := workers.NewCleanupProcessor(filepath.Join(t.TempDir(), "never-created"), 0, helpers.TestLogger())
	assert.NoError(t, p.CleanupTempFiles(context.Background(), workers.NewCleanupTask()))
}

func TestPDFProcessor_ProcessInvoice_UnreadableFile(t *testing.T) {
	path := helpers.CreateTempFile(t, []byte("not a pdf"), ".pdf")

	ctrl := gomock.NewController(t)
	orders := mocks.NewMockPurchaseOrderService(ctrl)
	p := workers.NewPDFProcessor(orders, helpers.TestLogger())

	task, err := workers.NewInvoiceTask(workers.InvoicePayload{JobID: "job-6", FilePath: path, SupplierID: 1})
	require.NoError(t, err)

	err = p.ProcessInvoice(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseInvoiceLines(t *testing.T) {
	lines := []string{
		"ACME METALS INC",
		"Invoice 2025-0042",
		"SKU   QTY   UNIT PRICE   TOTAL",
		"brk-001  100  12.50  1,250.00",
		"BLT-010 2,000 0.30",
		"PLT-200 10 $1,299.99",
		"Freight charges apply",
		"2025 10 5.00",
		"GSK-7 0 4.00",
		"SUBTOTAL 14,874.90",
		"XYZ-9 1 1.00",
	}

	got := workers.ParseInvoiceLines(lines)

	require.Len(t, got, 2)
	assert.Equal(t, "BRK-001", got[0].SKU)
	assert.Equal(t, 100, got[0].Quantity)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "PLT-200", got[1].SKU)
	assert.True(t, got[1].UnitPrice.Equal(decimal.RequireFromString("1299.99")))
}

func TestParseInvoiceLines_NoHeader(t *testing.T) {
	got := workers.ParseInvoiceLines([]string{"  BRK-001   3   4.25  ", "TOTAL 12.75"})

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Quantity)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("4.25")))
}
