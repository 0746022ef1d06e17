package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
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

type fakeDatabase struct {
	err error
}

func (d *fakeDatabase) Ping(context.Context) error { return d.err }

func (d *fakeDatabase) Health(context.Context) map[string]interface{} {
	return map[string]interface{}{"total_conns": 4}
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		dbErr          error
		stopRedis      bool
		expectedStatus int
		expectedState  string
	}{
		{name: "all_healthy", expectedStatus: http.StatusOK, expectedState: "healthy"},
		{name: "database_down", dbErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
		{name: "redis_down", stopRedis: true, expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rds := helpers.SetupTestRedis(t)
			if tt.stopRedis {
				rds.Server.Close()
			}
			handler := handlers.NewHealthHandler(&fakeDatabase{err: tt.dbErr}, rds.Client, &fakeInspector{},
				helpers.LoadTestConfig(), helpers.TestLogger())

			w := httptest.NewRecorder()
			handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Contains(t, status.Services, "asynq")
			assert.Equal(t, "test", status.Environment)
		})
	}
}

func TestHealthHandler_ReadinessAndLiveness(t *testing.T) {
	rds := helpers.SetupTestRedis(t)
	handler := handlers.NewHealthHandler(&fakeDatabase{}, rds.Client, nil, helpers.LoadTestConfig(), helpers.TestLogger())

	w := httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	rds.Server.Close()

	w = httptest.NewRecorder()
	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alive"`)
}

func TestDashboardHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	dashboard := mocks.NewMockDashboardService(ctrl)
	dashboard.EXPECT().Stats(gomock.Any()).Return(&domain.DashboardStats{TotalProducts: 6, LowStockItems: 2}, nil)
	dashboard.EXPECT().InventoryStats(gomock.Any()).Return(nil, errors.New("redis and postgres down"))
	dashboard.EXPECT().SupplierStats(gomock.Any()).Return(nil, nil)

	handler := handlers.NewDashboardHandler(dashboard, helpers.TestLogger())

	w := httptest.NewRecorder()
	handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 6, stats.TotalProducts)

	w = httptest.NewRecorder()
	handler.GetInventoryStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/inventory-stats", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to load inventory stats", decodeMessage(t, w.Body.Bytes()))

	w = httptest.NewRecorder()
	handler.GetSupplierStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/supplier-stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
