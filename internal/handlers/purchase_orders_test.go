package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/handlers"
	"github.com/ammerola/mfg-erp/test/helpers"
	"github.com/ammerola/mfg-erp/test/mocks"
)

func TestPurchaseOrderHandler_ListPurchaseOrders(t *testing.T) {
	approved := domain.OrderApproved

	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockPurchaseOrderService)
		expectedStatus int
	}{
		{
			name:  "status_is_case_insensitive",
			query: "?status=approved",
			setupMocks: func(m *mocks.MockPurchaseOrderService) {
				m.EXPECT().List(gomock.Any(), domain.PurchaseOrderFilter{Status: &approved}).
					Return([]*domain.PurchaseOrder{helpers.CreateTestPurchaseOrder()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown_status",
			query:          "?status=lost",
			setupMocks:     func(m *mocks.MockPurchaseOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			orders := mocks.NewMockPurchaseOrderService(ctrl)
			tt.setupMocks(orders)
			handler := handlers.NewPurchaseOrderHandler(orders, helpers.TestLogger())

			w := httptest.NewRecorder()
			handler.ListPurchaseOrders(w, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPurchaseOrderHandler_CreatePurchaseOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mocks.NewMockPurchaseOrderService(ctrl)
	orders.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, po *domain.PurchaseOrder) error {
			require.Len(t, po.Items, 1)
			po.ID = 3
			po.OrderNumber = "PO-20250301-ABCDEF"
			po.Status = domain.OrderPending
			po.CalculateTotals()
			return nil
		})
	handler := handlers.NewPurchaseOrderHandler(orders, helpers.TestLogger())

	body := `{"supplierId":1,"items":[{"productId":1,"quantity":10,"unitPrice":2.5}]}`
	w := httptest.NewRecorder()
	handler.CreatePurchaseOrder(w, httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	var po domain.PurchaseOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &po))
	assert.Equal(t, domain.OrderPending, po.Status)
	assert.Equal(t, "25", po.TotalAmount.String())
}

func TestPurchaseOrderHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockPurchaseOrderService)
		expectedStatus int
	}{
		{
			name: "approves",
			body: `{"status":"Approved"}`,
			setupMocks: func(m *mocks.MockPurchaseOrderService) {
				m.EXPECT().UpdateStatus(gomock.Any(), int64(8), domain.OrderApproved).
					Return(&domain.PurchaseOrder{ID: 8, Status: domain.OrderApproved}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "illegal_transition",
			body: `{"status":"Delivered"}`,
			setupMocks: func(m *mocks.MockPurchaseOrderService) {
				m.EXPECT().UpdateStatus(gomock.Any(), int64(8), domain.OrderDelivered).
					Return(nil, domain.ErrInvalidStatus)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown_status",
			body:           `{"status":"Lost"}`,
			setupMocks:     func(m *mocks.MockPurchaseOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			orders := mocks.NewMockPurchaseOrderService(ctrl)
			tt.setupMocks(orders)
			handler := handlers.NewPurchaseOrderHandler(orders, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPut, "/api/v1/purchase-orders/8/status", bytes.NewBufferString(tt.body))
			req.SetPathValue("id", "8")
			w := httptest.NewRecorder()
			handler.UpdateStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPurchaseOrderHandler_DeletePurchaseOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mocks.NewMockPurchaseOrderService(ctrl)
	orders.EXPECT().Delete(gomock.Any(), int64(2)).Return(domain.ErrNotFound)
	handler := handlers.NewPurchaseOrderHandler(orders, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/purchase-orders/2", nil)
	req.SetPathValue("id", "2")
	w := httptest.NewRecorder()
	handler.DeletePurchaseOrder(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Purchase order not found", decodeMessage(t, w.Body.Bytes()))
}
