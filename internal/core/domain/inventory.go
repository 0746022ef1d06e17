// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Quantities and money go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// InventoryRecord is the stock of one product held in one warehouse.
// Available quantity and total value are derived and never stored.
type InventoryRecord struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"productId"`
	WarehouseID      int64           `json:"warehouseId"`
	QuantityOnHand   int             `json:"quantityOnHand"`
	QuantityReserved int             `json:"quantityReserved"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	LastStockUpdate  time.Time       `json:"lastStockUpdate"`
	LastCountDate    *time.Time      `json:"lastCountDate,omitempty"`
}

// QuantityAvailable returns on-hand minus reserved.
func (r *InventoryRecord) QuantityAvailable() int {
	return r.QuantityOnHand - r.QuantityReserved
}

// TotalValue returns on-hand times unit cost.
func (r *InventoryRecord) TotalValue() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(int64(r.QuantityOnHand)))
}

// Validate checks the stock invariants of the record.
func (r *InventoryRecord) Validate() error {
	return ValidateQuantities(r.QuantityOnHand, r.QuantityReserved, r.UnitCost)
}

// ValidateQuantities checks on-hand, reserved and unit cost against the
// stock invariants.
func ValidateQuantities(onHand, reserved int, unitCost decimal.Decimal) error {
	if onHand < 0 {
		return fmt.Errorf("%w: quantity on hand cannot be negative", ErrInvalidQuantity)
	}
	if reserved < 0 {
		return fmt.Errorf("%w: quantity reserved cannot be negative", ErrInvalidQuantity)
	}
	if reserved > onHand {
		return fmt.Errorf("%w: quantity reserved cannot exceed quantity on hand", ErrInvalidQuantity)
	}
	if unitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost cannot be negative", ErrInvalidQuantity)
	}
	return nil
}

// Touch stamps the record as mutated at now.
func (r *InventoryRecord) Touch(now time.Time) {
	r.LastStockUpdate = now.UTC()
}

// ProductRef is the slice of a product the ledger reads.
type ProductRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	ReorderLevel int    `json:"reorderLevel"`
}

// IsLowStock reports whether on-hand stock is at or below the product's
// reorder level. An orphaned record (nil product) is never low stock.
func IsLowStock(record *InventoryRecord, product *ProductRef) bool {
	if record == nil || product == nil {
		return false
	}
	return record.QuantityOnHand <= product.ReorderLevel
}

// InventoryEntry is a stored record together with the product and
// warehouse it references, as loaded by a joined read.
type InventoryEntry struct {
	Record        InventoryRecord
	Product       *ProductRef
	WarehouseName string
}

// InventoryView is the enriched read model returned to callers.
type InventoryView struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	SKU               string          `json:"sku"`
	WarehouseID       int64           `json:"warehouseId"`
	WarehouseName     string          `json:"warehouseName"`
	QuantityOnHand    int             `json:"quantityOnHand"`
	QuantityReserved  int             `json:"quantityReserved"`
	QuantityAvailable int             `json:"quantityAvailable"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	ReorderLevel      int             `json:"reorderLevel"`
	IsLowStock        bool            `json:"isLowStock"`
	LastStockUpdate   time.Time       `json:"lastStockUpdate"`
	LastCountDate     *time.Time      `json:"lastCountDate,omitempty"`
}

// NewInventoryView computes the derived fields of an entry.
func NewInventoryView(e *InventoryEntry) *InventoryView {
	r := &e.Record
	v := &InventoryView{
		ID:                r.ID,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		WarehouseName:     e.WarehouseName,
		QuantityOnHand:    r.QuantityOnHand,
		QuantityReserved:  r.QuantityReserved,
		QuantityAvailable: r.QuantityAvailable(),
		UnitCost:          r.UnitCost,
		TotalValue:        r.TotalValue(),
		IsLowStock:        IsLowStock(r, e.Product),
		LastStockUpdate:   r.LastStockUpdate.UTC(),
	}
	if r.LastCountDate != nil {
		t := r.LastCountDate.UTC()
		v.LastCountDate = &t
	}
	if e.Product != nil {
		v.ProductName = e.Product.Name
		v.SKU = e.Product.SKU
		v.ReorderLevel = e.Product.ReorderLevel
	}
	return v
}

// InventoryFilter narrows a ledger listing.
type InventoryFilter struct {
	WarehouseID  *int64
	LowStockOnly bool
}

// AdjustInventory replaces the stock fields of a record.
type AdjustInventory struct {
	QuantityOnHand   int             `json:"quantityOnHand"`
	QuantityReserved int             `json:"quantityReserved"`
	UnitCost         decimal.Decimal `json:"unitCost"`
}

// Validate checks the target state against the stock invariants.
func (a AdjustInventory) Validate() error {
	return ValidateQuantities(a.QuantityOnHand, a.QuantityReserved, a.UnitCost)
}

// CreateInventory starts tracking a product in a warehouse.
type CreateInventory struct {
	ProductID        int64           `json:"productId"`
	WarehouseID      int64           `json:"warehouseId"`
	QuantityOnHand   int             `json:"quantityOnHand"`
	QuantityReserved int             `json:"quantityReserved"`
	UnitCost         decimal.Decimal `json:"unitCost"`
}

// Validate checks the initial state.
func (c CreateInventory) Validate() error {
	if c.ProductID <= 0 {
		return fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	if c.WarehouseID <= 0 {
		return fmt.Errorf("%w: warehouseId is required", ErrInvalidInput)
	}
	return ValidateQuantities(c.QuantityOnHand, c.QuantityReserved, c.UnitCost)
}

// TransferRequest moves on-hand stock of one product between warehouses.
type TransferRequest struct {
	ProductID       int64  `json:"productId"`
	FromWarehouseID int64  `json:"fromWarehouseId"`
	ToWarehouseID   int64  `json:"toWarehouseId"`
	Quantity        int    `json:"quantity"`
	Notes           string `json:"notes,omitempty"`
}

// Validate rejects non-positive quantities and self transfers.
func (t TransferRequest) Validate() error {
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidQuantity)
	}
	if t.FromWarehouseID == t.ToWarehouseID {
		return fmt.Errorf("%w: source and destination warehouse must differ", ErrInvalidQuantity)
	}
	return nil
}

// TransferResult carries both sides of a completed transfer.
type TransferResult struct {
	Source             InventoryRecord `json:"source"`
	Destination        InventoryRecord `json:"destination"`
	DestinationCreated bool            `json:"destinationCreated"`
}

// LowStockAlert is published when a record is at or below its reorder level.
type LowStockAlert struct {
	InventoryID    int64     `json:"inventoryId"`
	ProductID      int64     `json:"productId"`
	SKU            string    `json:"sku"`
	ProductName    string    `json:"productName"`
	WarehouseID    int64     `json:"warehouseId"`
	WarehouseName  string    `json:"warehouseName"`
	QuantityOnHand int       `json:"quantityOnHand"`
	ReorderLevel   int       `json:"reorderLevel"`
	DetectedAt     time.Time `json:"detectedAt"`
}

// NewLowStockAlert builds an alert from an enriched view.
func NewLowStockAlert(v *InventoryView, now time.Time) LowStockAlert {
	return LowStockAlert{
		InventoryID:    v.ID,
		ProductID:      v.ProductID,
		SKU:            v.SKU,
		ProductName:    v.ProductName,
		WarehouseID:    v.WarehouseID,
		WarehouseName:  v.WarehouseName,
		QuantityOnHand: v.QuantityOnHand,
		ReorderLevel:   v.ReorderLevel,
		DetectedAt:     now.UTC(),
	}
}
