// internal/handlers/reference.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// ReferenceHandler serves categories, suppliers and warehouses. Deletes
// deactivate the record.
type ReferenceHandler struct {
	responder
	catalog ports.CatalogService
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(catalog ports.CatalogService, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		responder: responder{logger: logger.With(slog.String("handler", "reference"))},
		catalog:   catalog,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *ReferenceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list(h.responder, w, r, "categories", h.catalog.ListCategories)
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *ReferenceHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	get(h.responder, w, r, "Category", h.catalog.GetCategory)
}

// CreateCategory handles POST /api/v1/categories
func (h *ReferenceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	create(h.responder, w, r, "category", h.catalog.CreateCategory)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *ReferenceHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	update(h.responder, w, r, "Category", h.catalog.UpdateCategory)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *ReferenceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	deactivate(h.responder, w, r, "Category", h.catalog.DeactivateCategory)
}

// ListSuppliers handles GET /api/v1/suppliers
func (h *ReferenceHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	list(h.responder, w, r, "suppliers", h.catalog.ListSuppliers)
}

// GetSupplier handles GET /api/v1/suppliers/{id}
func (h *ReferenceHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	get(h.responder, w, r, "Supplier", h.catalog.GetSupplier)
}

// CreateSupplier handles POST /api/v1/suppliers
func (h *ReferenceHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	create(h.responder, w, r, "supplier", h.catalog.CreateSupplier)
}

// UpdateSupplier handles PUT /api/v1/suppliers/{id}
func (h *ReferenceHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	update(h.responder, w, r, "Supplier", h.catalog.UpdateSupplier)
}

// DeleteSupplier handles DELETE /api/v1/suppliers/{id}
func (h *ReferenceHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	deactivate(h.responder, w, r, "Supplier", h.catalog.DeactivateSupplier)
}

// ListWarehouses handles GET /api/v1/warehouses
func (h *ReferenceHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	list(h.responder, w, r, "warehouses", h.catalog.ListWarehouses)
}

// GetWarehouse handles GET /api/v1/warehouses/{id}. The body includes the
// warehouse's inventory and its totals.
func (h *ReferenceHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	get(h.responder, w, r, "Warehouse", h.catalog.GetWarehouse)
}

// CreateWarehouse handles POST /api/v1/warehouses
func (h *ReferenceHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	create(h.responder, w, r, "warehouse", h.catalog.CreateWarehouse)
}

// UpdateWarehouse handles PUT /api/v1/warehouses/{id}
func (h *ReferenceHandler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	update(h.responder, w, r, "Warehouse", h.catalog.UpdateWarehouse)
}

// DeleteWarehouse handles DELETE /api/v1/warehouses/{id}
func (h *ReferenceHandler) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	deactivate(h.responder, w, r, "Warehouse", h.catalog.DeactivateWarehouse)
}

func list[T any](h responder, w http.ResponseWriter, r *http.Request, what string, fn func(context.Context) ([]*T, error)) {
	items, err := fn(r.Context())
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "list "+what, "Not found")
		return
	}
	if items == nil {
		items = []*T{}
	}
	h.respondJSON(w, http.StatusOK, items)
}

func get[T any](h responder, w http.ResponseWriter, r *http.Request, what string, fn func(context.Context, int64) (*T, error)) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid "+what+" ID format")
		return
	}
	item, err := fn(r.Context(), id)
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "retrieve "+what, what+" not found")
		return
	}
	h.respondJSON(w, http.StatusOK, item)
}

func create[T any](h responder, w http.ResponseWriter, r *http.Request, what string, fn func(context.Context, *T) error) {
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := fn(r.Context(), &item); err != nil {
		h.respondServiceError(r.Context(), w, err, "create "+what, "Not found")
		return
	}
	h.respondJSON(w, http.StatusCreated, &item)
}

func update[T any](h responder, w http.ResponseWriter, r *http.Request, what string, fn func(context.Context, int64, *T) error) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid "+what+" ID format")
		return
	}
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := fn(r.Context(), id, &item); err != nil {
		h.respondServiceError(r.Context(), w, err, "update "+what, what+" not found")
		return
	}
	h.respondJSON(w, http.StatusOK, &item)
}

func deactivate(h responder, w http.ResponseWriter, r *http.Request, what string, fn func(context.Context, int64) error) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid "+what+" ID format")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		h.respondServiceError(r.Context(), w, err, "delete "+what, what+" not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
