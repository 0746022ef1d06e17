// internal/core/domain/catalog.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate performs domain validation on the category
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", ErrInvalidInput)
	}
	return nil
}

// Supplier provides products.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	Country       string    `json:"country,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate performs domain validation on the supplier
func (s *Supplier) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	return nil
}

// Product is a stock keeping unit.
type Product struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    int64           `json:"categoryId"`
	CategoryName  string          `json:"categoryName,omitempty"`
	SupplierID    *int64          `json:"supplierId,omitempty"`
	SupplierName  string          `json:"supplierName,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	ReorderLevel  int             `json:"reorderLevel"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	if p.SKU == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if len(p.SKU) > 50 {
		return fmt.Errorf("%w: sku must be at most 50 characters", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("%w: categoryId is required", ErrInvalidInput)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unitPrice cannot be negative", ErrInvalidInput)
	}
	if p.ReorderLevel < 0 {
		return fmt.Errorf("%w: reorderLevel cannot be negative", ErrInvalidInput)
	}
	if p.UnitOfMeasure == "" {
		p.UnitOfMeasure = "EA"
	}
	return nil
}

// Ref returns the part of the product the ledger reads.
func (p *Product) Ref() *ProductRef {
	return &ProductRef{ID: p.ID, Name: p.Name, SKU: p.SKU, ReorderLevel: p.ReorderLevel}
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID *int64
	SupplierID *int64
	IsActive   *bool
}

// Warehouse holds inventory.
type Warehouse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zipCode,omitempty"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate performs domain validation on the warehouse
func (w *Warehouse) Validate() error {
	w.Code = strings.TrimSpace(w.Code)
	w.Name = strings.TrimSpace(w.Name)
	if w.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if w.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if w.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", ErrInvalidInput)
	}
	return nil
}

// WarehouseDetail is a warehouse with the stock it holds.
type WarehouseDetail struct {
	Warehouse
	Inventory     []*InventoryView `json:"inventory"`
	TotalQuantity int              `json:"totalQuantity"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
}
