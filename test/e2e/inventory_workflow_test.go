//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/mfg-erp/internal/app"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/handlers"
	"github.com/ammerola/mfg-erp/internal/handlers/middleware"
	"github.com/ammerola/mfg-erp/test/helpers"
)

type InventoryE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	fixture   *helpers.Fixture
}

func (s *InventoryE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *InventoryE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *InventoryE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
	s.fixture = helpers.SeedFixture(s.T(), s.testDB.Database)
}

func (s *InventoryE2ESuite) TestCompleteInventoryWorkflow() {
	product := s.fixture.Product
	from, to := s.fixture.Warehouses[0], s.fixture.Warehouses[1]

	// 1. Track stock in the first warehouse
	resp := s.makeRequest("POST", "/inventory", domain.CreateInventory{
		ProductID:        product.ID,
		WarehouseID:      from.ID,
		QuantityOnHand:   100,
		QuantityReserved: 10,
		UnitCost:         decimal.RequireFromString("12.50"),
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created domain.InventoryView
	s.decodeResponse(resp, &created)
	s.Equal(90, created.QuantityAvailable)
	s.True(created.TotalValue.Equal(decimal.RequireFromString("1250")))

	// 2. Tracking the same pair again is a conflict
	resp = s.makeRequest("POST", "/inventory", domain.CreateInventory{
		ProductID:   product.ID,
		WarehouseID: from.ID,
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 3. Transfer into a warehouse that holds none yet
	resp = s.makeRequest("POST", "/inventory/transfer", domain.TransferRequest{
		ProductID:       product.ID,
		FromWarehouseID: from.ID,
		ToWarehouseID:   to.ID,
		Quantity:        30,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	views := s.listInventory("")
	s.Require().Len(views, 2)
	byWarehouse := make(map[int64]domain.InventoryView)
	for _, v := range views {
		byWarehouse[v.WarehouseID] = v
	}
	s.Equal(70, byWarehouse[from.ID].QuantityOnHand)
	s.Equal(10, byWarehouse[from.ID].QuantityReserved)
	s.Equal(30, byWarehouse[to.ID].QuantityOnHand)
	s.True(byWarehouse[to.ID].UnitCost.Equal(decimal.RequireFromString("12.50")))

	// 4. Reserved stock cannot move
	resp = s.makeRequest("POST", "/inventory/transfer", domain.TransferRequest{
		ProductID:       product.ID,
		FromWarehouseID: from.ID,
		ToWarehouseID:   to.ID,
		Quantity:        61,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Insufficient stock for transfer", s.message(resp))

	// 5. A count below the reorder level shows up as low stock
	resp = s.makeRequest("POST", fmt.Sprintf("/inventory/%d/count", byWarehouse[to.ID].ID), map[string]int{
		"countedQuantity": product.ReorderLevel - 1,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	var counted domain.InventoryView
	s.decodeResponse(resp, &counted)
	s.NotNil(counted.LastCountDate)
	s.True(counted.IsLowStock)

	resp = s.makeRequest("GET", "/inventory/low-stock", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var low []domain.InventoryView
	s.decodeResponse(resp, &low)
	s.Require().Len(low, 1)
	s.Equal(counted.ID, low[0].ID)

	// 6. Products with stock cannot be deleted
	resp = s.makeRequest("DELETE", fmt.Sprintf("/products/%d", product.ID), nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func (s *InventoryE2ESuite) TestTransferFromMissingSource() {
	resp := s.makeRequest("POST", "/inventory/transfer", domain.TransferRequest{
		ProductID:       s.fixture.Product.ID,
		FromWarehouseID: s.fixture.Warehouses[0].ID,
		ToWarehouseID:   s.fixture.Warehouses[1].ID,
		Quantity:        1,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Source inventory not found", s.message(resp))
}

func (s *InventoryE2ESuite) TestAdjustRejectsReservedAboveOnHand() {
	resp := s.makeRequest("POST", "/inventory", domain.CreateInventory{
		ProductID:      s.fixture.Product.ID,
		WarehouseID:    s.fixture.Warehouses[0].ID,
		QuantityOnHand: 5,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created domain.InventoryView
	s.decodeResponse(resp, &created)

	resp = s.makeRequest("PUT", fmt.Sprintf("/inventory/%d", created.ID), domain.AdjustInventory{
		QuantityOnHand:   5,
		QuantityReserved: 6,
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/inventory/%d", created.ID), nil)
	var unchanged domain.InventoryView
	s.decodeResponse(resp, &unchanged)
	s.Equal(0, unchanged.QuantityReserved)
}

func (s *InventoryE2ESuite) TestWarehouseDetail() {
	wh := s.fixture.Warehouses[2]
	resp := s.makeRequest("POST", "/inventory", domain.CreateInventory{
		ProductID:      s.fixture.Product.ID,
		WarehouseID:    wh.ID,
		QuantityOnHand: 4,
		UnitCost:       decimal.RequireFromString("2.25"),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/warehouses/%d", wh.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var detail domain.WarehouseDetail
	s.decodeResponse(resp, &detail)
	s.Equal(wh.Code, detail.Code)
	s.Len(detail.Inventory, 1)
	s.Equal(4, detail.TotalQuantity)
	s.True(detail.TotalValue.Equal(decimal.RequireFromString("9")))
}

func (s *InventoryE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	core := app.NewCoreFrom(s.testDB.Database, s.testRedis.Client, cfg, logger)

	inv := handlers.NewInventoryHandler(core.Ledger, logger)
	prod := handlers.NewProductHandler(core.Catalog, logger)
	ref := handlers.NewReferenceHandler(core.Catalog, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/inventory", inv.ListInventory)
	mux.HandleFunc("GET /api/v1/inventory/low-stock", inv.LowStock)
	mux.HandleFunc("GET /api/v1/inventory/{id}", inv.GetInventory)
	mux.HandleFunc("POST /api/v1/inventory", inv.CreateInventory)
	mux.HandleFunc("PUT /api/v1/inventory/{id}", inv.UpdateInventory)
	mux.HandleFunc("POST /api/v1/inventory/transfer", inv.Transfer)
	mux.HandleFunc("POST /api/v1/inventory/{id}/count", inv.RecordCount)
	mux.HandleFunc("DELETE /api/v1/products/{id}", prod.DeleteProduct)
	mux.HandleFunc("GET /api/v1/warehouses/{id}", ref.GetWarehouse)

	return httptest.NewServer(middleware.Chain(mux,
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Recovery(logger),
	))
}

func (s *InventoryE2ESuite) listInventory(query string) []domain.InventoryView {
	resp := s.makeRequest("GET", "/inventory"+query, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var views []domain.InventoryView
	s.decodeResponse(resp, &views)
	return views
}

func (s *InventoryE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.Require().NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *InventoryE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func (s *InventoryE2ESuite) message(resp *http.Response) string {
	var body handlers.MessageResponse
	s.decodeResponse(resp, &body)
	return body.Message
}

func TestInventoryE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(InventoryE2ESuite))
}
