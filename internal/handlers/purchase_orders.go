// internal/handlers/purchase_orders.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

const purchaseOrderNotFound = "Purchase order not found"

// PurchaseOrderHandler handles purchase order HTTP requests
type PurchaseOrderHandler struct {
	responder
	orders ports.PurchaseOrderService
	logger *slog.Logger
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(orders ports.PurchaseOrderService, logger *slog.Logger) *PurchaseOrderHandler {
	l := logger.With(slog.String("handler", "purchase_order"))
	return &PurchaseOrderHandler{
		responder: responder{logger: l},
		orders:    orders,
		logger:    l,
	}
}

// ListPurchaseOrders handles GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) ListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter domain.PurchaseOrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	supplierID, err := queryInt64(r, "supplierId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.SupplierID = supplierID

	orders, err := h.orders.List(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list purchase orders", purchaseOrderNotFound)
		return
	}

	if orders == nil {
		orders = []*domain.PurchaseOrder{}
	}
	h.respondJSON(w, http.StatusOK, orders)
}

// GetPurchaseOrder handles GET /api/v1/purchase-orders/{id}
func (h *PurchaseOrderHandler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid purchase order ID format")
		return
	}

	po, err := h.orders.Get(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "retrieve purchase order", purchaseOrderNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, po)
}

// CreatePurchaseOrder handles POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var po domain.PurchaseOrder
	if err := decodeJSON(w, r, &po); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.orders.Create(ctx, &po); err != nil {
		h.respondServiceError(ctx, w, err, "create purchase order", "Supplier or product not found")
		return
	}

	h.logger.InfoContext(ctx, "purchase order created",
		slog.Int64("purchase_order_id", po.ID),
		slog.String("order_number", po.OrderNumber),
		slog.Int("items", len(po.Items)))

	h.respondJSON(w, http.StatusCreated, po)
}

// StatusUpdateRequest moves a purchase order to a new status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/v1/purchase-orders/{id}/status
func (h *PurchaseOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid purchase order ID format")
		return
	}

	var req StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	po, err := h.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		h.respondServiceError(ctx, w, err, "update purchase order status", purchaseOrderNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, po)
}

// DeletePurchaseOrder handles DELETE /api/v1/purchase-orders/{id}
func (h *PurchaseOrderHandler) DeletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid purchase order ID format")
		return
	}

	if err := h.orders.Delete(ctx, id); err != nil {
		h.respondServiceError(ctx, w, err, "delete purchase order", purchaseOrderNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
