// internal/core/domain/purchase_order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderApproved  OrderStatus = "Approved"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderCancelled},
	OrderApproved: {OrderShipped, OrderCancelled},
	OrderShipped:  {OrderDelivered},
}

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderPending, OrderApproved, OrderShipped, OrderDelivered, OrderCancelled} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, s)
}

// CanTransition reports whether the order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the order still counts as pending work.
func (s OrderStatus) IsOpen() bool {
	return s == OrderPending || s == OrderApproved
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	ID              int64           `json:"id"`
	PurchaseOrderID int64           `json:"purchaseOrderId"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName,omitempty"`
	SKU             string          `json:"sku,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

// PurchaseOrder is an order for stock placed with a supplier.
type PurchaseOrder struct {
	ID                   int64               `json:"id"`
	OrderNumber          string              `json:"orderNumber"`
	SupplierID           int64               `json:"supplierId"`
	SupplierName         string              `json:"supplierName,omitempty"`
	OrderDate            time.Time           `json:"orderDate"`
	ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate,omitempty"`
	Status               OrderStatus         `json:"status"`
	TotalAmount          decimal.Decimal     `json:"totalAmount"`
	Notes                string              `json:"notes,omitempty"`
	Items                []PurchaseOrderItem `json:"items"`
	CreatedAt            time.Time           `json:"createdAt"`
}

// Validate performs domain validation on the order and its lines
func (po *PurchaseOrder) Validate() error {
	if po.SupplierID <= 0 {
		return fmt.Errorf("%w: supplierId is required", ErrInvalidInput)
	}
	if len(po.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	for i, item := range po.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: item %d: productId is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidQuantity, i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unitPrice cannot be negative", ErrInvalidInput, i)
		}
	}
	return nil
}

// CalculateTotals sets every line total and the order total.
func (po *PurchaseOrder) CalculateTotals() {
	total := decimal.Zero
	for i := range po.Items {
		item := &po.Items[i]
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.LineTotal)
	}
	po.TotalAmount = total
}

// PrepareForStorage fills defaults for a new order.
func (po *PurchaseOrder) PrepareForStorage(now time.Time) {
	if po.OrderNumber == "" {
		po.OrderNumber = NewOrderNumber(now)
	}
	if po.OrderDate.IsZero() {
		po.OrderDate = now.UTC()
	}
	po.Status = OrderPending
	po.CalculateTotals()
}

// NewOrderNumber returns an order number of the form PO-YYYYMMDD-xxxxxx.
func NewOrderNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("PO-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(id[:6]))
}

// PurchaseOrderFilter narrows a purchase order listing.
type PurchaseOrderFilter struct {
	Status     *OrderStatus
	SupplierID *int64
}

// InvoiceLine is one line read from a supplier invoice.
type InvoiceLine struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// InvoiceImportResult reports the order created from an invoice.
type InvoiceImportResult struct {
	Order       *PurchaseOrder `json:"order"`
	UnknownSKUs []string       `json:"unknownSkus,omitempty"`
}
