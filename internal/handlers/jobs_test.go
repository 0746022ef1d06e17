package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/handlers"
	"github.com/ammerola/mfg-erp/internal/workers"
	"github.com/ammerola/mfg-erp/test/helpers"
	"github.com/ammerola/mfg-erp/test/mocks"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task", Queue: workers.QueueDefault, Type: task.Type()}, nil
}

type fakeInspector struct {
	tasks map[string]*asynq.TaskInfo
	err   error
}

func (i *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	if i.err != nil {
		return nil, i.err
	}
	info, ok := i.tasks[queue+"/"+id]
	if !ok {
		return nil, asynq.ErrTaskNotFound
	}
	return info, nil
}

func (i *fakeInspector) Queues() ([]string, error) {
	return []string{workers.QueueDefault}, i.err
}

func (i *fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 2, Pending: 2}, i.err
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestExportHandler_ExportInventory(t *testing.T) {
	views := []*domain.InventoryView{domain.NewInventoryView(helpers.CreateTestEntry())}

	t.Run("xlsx_download", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedgerService(ctrl)
		ledger.EXPECT().List(gomock.Any(), domain.InventoryFilter{}).Return(views, nil)
		handler := handlers.NewExportHandler(ledger, &fakeQueue{}, helpers.TestLogger())

		w := httptest.NewRecorder()
		handler.ExportInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "inventory_export_")
		wb, err := xlsx.OpenBinary(w.Body.Bytes())
		require.NoError(t, err)
		sheet, ok := wb.Sheet["Inventory"]
		require.True(t, ok)
		assert.Equal(t, 2, sheet.MaxRow)
	})

	t.Run("json_with_metadata", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedgerService(ctrl)
		ledger.EXPECT().List(gomock.Any(), domain.InventoryFilter{LowStockOnly: true}).Return(views, nil)
		handler := handlers.NewExportHandler(ledger, &fakeQueue{}, helpers.TestLogger())

		w := httptest.NewRecorder()
		handler.ExportInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory?format=json&lowStockOnly=true", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var response handlers.JSONExportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Metadata.TotalItems)
		assert.True(t, response.Metadata.LowStockOnly)
		assert.Len(t, response.Inventory, 1)
	})

	t.Run("unknown_format", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := handlers.NewExportHandler(mocks.NewMockLedgerService(ctrl), &fakeQueue{}, helpers.TestLogger())

		w := httptest.NewRecorder()
		handler.ExportInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory?format=csv", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExportHandler_ExportInventoryAsync(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := &fakeQueue{}
	handler := handlers.NewExportHandler(mocks.NewMockLedgerService(ctrl), queue, helpers.TestLogger())

	w := httptest.NewRecorder()
	handler.ExportInventoryAsync(w, httptest.NewRequest(http.MethodPost, "/api/v1/export/inventory/async?warehouseId=3", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted handlers.JobAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.NotEmpty(t, accepted.JobID)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, workers.TypeInventoryExport, queue.tasks[0].Type())
	var payload workers.ExportPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, accepted.JobID, payload.JobID)
	require.NotNil(t, payload.WarehouseID)
	assert.Equal(t, int64(3), *payload.WarehouseID)
}

func TestImportHandler_ImportStockCount(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		queueErr       error
		expectedStatus int
		expectStaged   bool
	}{
		{name: "queued", filename: "count.xlsx", expectedStatus: http.StatusAccepted, expectStaged: true},
		{name: "wrong_extension", filename: "count.csv", expectedStatus: http.StatusBadRequest},
		{name: "missing_file", expectedStatus: http.StatusBadRequest},
		{name: "queue_down_removes_upload", filename: "count.xlsx", queueErr: errors.New("redis down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			queue := &fakeQueue{err: tt.queueErr}
			handler := handlers.NewImportHandler(queue, dir, 1<<20, 1<<20, helpers.TestLogger())

			body, contentType := multipartUpload(t, tt.filename, []byte("workbook"), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/import/stock-count", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.ImportStockCount(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			if !tt.expectStaged {
				assert.Empty(t, entries)
				return
			}

			require.Len(t, queue.tasks, 1)
			var payload workers.StockCountPayload
			require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
			assert.Equal(t, dir, filepath.Dir(payload.FilePath))
			staged, err := os.ReadFile(payload.FilePath)
			require.NoError(t, err)
			assert.Equal(t, "workbook", string(staged))
		})
	}
}

func TestImportHandler_ImportStockCount_TooLarge(t *testing.T) {
	dir := t.TempDir()
	handler := handlers.NewImportHandler(&fakeQueue{}, dir, 512, 512, helpers.TestLogger())

	body, contentType := multipartUpload(t, "count.xlsx", bytes.Repeat([]byte("x"), 4096), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/stock-count", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ImportStockCount(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportHandler_ImportInvoice(t *testing.T) {
	t.Run("queued_with_supplier", func(t *testing.T) {
		queue := &fakeQueue{}
		handler := handlers.NewImportHandler(queue, t.TempDir(), 1<<20, 1<<20, helpers.TestLogger())

		body, contentType := multipartUpload(t, "invoice.PDF", []byte("%PDF-1.4"), map[string]string{"supplierId": "4", "notes": "March restock"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ImportInvoice(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.tasks, 1)
		assert.Equal(t, workers.TypeInvoiceImport, queue.tasks[0].Type())
		var payload workers.InvoicePayload
		require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
		assert.Equal(t, int64(4), payload.SupplierID)
		assert.Equal(t, "March restock", payload.Notes)
		assert.Equal(t, ".pdf", filepath.Ext(payload.FilePath))
	})

	t.Run("supplier_required", func(t *testing.T) {
		dir := t.TempDir()
		queue := &fakeQueue{}
		handler := handlers.NewImportHandler(queue, dir, 1<<20, 1<<20, helpers.TestLogger())

		body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-1.4"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ImportInvoice(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "supplierId is required", decodeMessage(t, w.Body.Bytes()))
		assert.Empty(t, queue.tasks)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestJobHandler_GetJob(t *testing.T) {
	completed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	inspector := &fakeInspector{tasks: map[string]*asynq.TaskInfo{
		workers.QueueLow + "/job-1": {
			ID:          "job-1",
			Queue:       workers.QueueLow,
			Type:        workers.TypeInventoryExport,
			State:       asynq.TaskStateCompleted,
			MaxRetry:    3,
			CompletedAt: completed,
			Result:      []byte(`{"rows":4}`),
		},
	}}
	handler := handlers.NewJobHandler(inspector, helpers.TestLogger())

	t.Run("found_in_low_queue", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
		req.SetPathValue("id", "job-1")
		w := httptest.NewRecorder()
		handler.GetJob(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var status handlers.JobStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "completed", status.State)
		assert.Equal(t, workers.TypeInventoryExport, status.Type)
		require.NotNil(t, status.CompletedAt)
		assert.True(t, completed.Equal(*status.CompletedAt))
		assert.JSONEq(t, `{"rows":4}`, string(status.Result))
	})

	t.Run("unknown_job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		handler.GetJob(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("inspector_failure", func(t *testing.T) {
		broken := handlers.NewJobHandler(&fakeInspector{err: errors.New("redis down")}, helpers.TestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
		req.SetPathValue("id", "job-1")
		w := httptest.NewRecorder()
		broken.GetJob(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
