// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

const inventoryNotFound = "Inventory item not found"

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	responder
	ledger ports.LedgerService
	logger *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(ledger ports.LedgerService, logger *slog.Logger) *InventoryHandler {
	l := logger.With(slog.String("handler", "inventory"))
	return &InventoryHandler{
		responder: responder{logger: l},
		ledger:    ledger,
		logger:    l,
	}
}

// ListInventory handles GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseInventoryFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.ledger.List(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list inventory", inventoryNotFound)
		return
	}

	if views == nil {
		views = []*domain.InventoryView{}
	}
	h.respondJSON(w, http.StatusOK, views)
}

// GetInventory handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid inventory ID format")
		return
	}

	view, err := h.ledger.ReadDetail(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "retrieve inventory item", inventoryNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// UpdateInventory handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid inventory ID format")
		return
	}

	var req domain.AdjustInventory
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.ledger.Adjust(ctx, id, req); err != nil {
		h.respondServiceError(ctx, w, err, "update inventory item", inventoryNotFound)
		return
	}

	h.logger.InfoContext(ctx, "inventory adjusted",
		slog.Int64("inventory_id", id),
		slog.Int("quantity_on_hand", req.QuantityOnHand),
		slog.Int("quantity_reserved", req.QuantityReserved))

	w.WriteHeader(http.StatusNoContent)
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.ledger.LowStock(ctx)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list low stock items", inventoryNotFound)
		return
	}

	if views == nil {
		views = []*domain.InventoryView{}
	}
	h.respondJSON(w, http.StatusOK, views)
}

// Transfer handles POST /api/v1/inventory/transfer
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.ledger.Transfer(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "transfer stock", inventoryNotFound)
		return
	}

	h.logger.InfoContext(ctx, "stock transferred",
		slog.Int64("product_id", req.ProductID),
		slog.Int64("from_warehouse_id", req.FromWarehouseID),
		slog.Int64("to_warehouse_id", req.ToWarehouseID),
		slog.Int("quantity", req.Quantity),
		slog.Bool("destination_created", result.DestinationCreated))

	h.respondJSON(w, http.StatusOK, MessageResponse{Message: "Stock transfer completed successfully"})
}

// CreateInventory handles POST /api/v1/inventory
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateInventory
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.ledger.Track(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "create inventory item", "Product or warehouse not found")
		return
	}

	h.logger.InfoContext(ctx, "inventory item created",
		slog.Int64("inventory_id", view.ID),
		slog.Int64("product_id", view.ProductID),
		slog.Int64("warehouse_id", view.WarehouseID))

	h.respondJSON(w, http.StatusCreated, view)
}

// StockCountRequest is the body of a physical count.
type StockCountRequest struct {
	CountedQuantity *int `json:"countedQuantity"`
}

// RecordCount handles POST /api/v1/inventory/{id}/count
func (h *InventoryHandler) RecordCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid inventory ID format")
		return
	}

	var req StockCountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CountedQuantity == nil {
		h.respondError(w, http.StatusBadRequest, "countedQuantity is required")
		return
	}

	view, err := h.ledger.RecordCount(ctx, id, *req.CountedQuantity)
	if err != nil {
		h.respondServiceError(ctx, w, err, "record stock count", inventoryNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

func parseInventoryFilter(r *http.Request) (domain.InventoryFilter, error) {
	var filter domain.InventoryFilter

	warehouseID, err := queryInt64(r, "warehouseId")
	if err != nil {
		return filter, err
	}
	filter.WarehouseID = warehouseID

	lowStockOnly, err := queryBool(r, "lowStockOnly")
	if err != nil {
		return filter, err
	}
	if lowStockOnly != nil {
		filter.LowStockOnly = *lowStockOnly
	}

	return filter, nil
}
