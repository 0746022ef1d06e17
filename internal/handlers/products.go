// internal/handlers/products.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

const productNotFound = "Product not found"

// ProductHandler handles product HTTP requests
type ProductHandler struct {
	responder
	catalog ports.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog ports.CatalogService, logger *slog.Logger) *ProductHandler {
	l := logger.With(slog.String("handler", "product"))
	return &ProductHandler{
		responder: responder{logger: l},
		catalog:   catalog,
		logger:    l,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter domain.ProductFilter
	var err error
	if filter.CategoryID, err = queryInt64(r, "categoryId"); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.SupplierID, err = queryInt64(r, "supplierId"); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.IsActive, err = queryBool(r, "isActive"); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list products", productNotFound)
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	h.respondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "retrieve product", productNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var p domain.Product
	if err := decodeJSON(w, r, &p); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.catalog.CreateProduct(ctx, &p); err != nil {
		h.respondServiceError(ctx, w, err, "create product", "Category or supplier not found")
		return
	}

	h.respondJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var p domain.Product
	if err := decodeJSON(w, r, &p); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.catalog.UpdateProduct(ctx, id, &p); err != nil {
		h.respondServiceError(ctx, w, err, "update product", productNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		h.respondServiceError(ctx, w, err, "delete product", productNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
