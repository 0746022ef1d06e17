// internal/core/services/purchase_order.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// PurchaseOrderService handles purchase order workflows
type PurchaseOrderService struct {
	orders   ports.PurchaseOrderRepository
	products ports.ProductRepository
	cache    ports.CacheInvalidator
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.PurchaseOrderService = (*PurchaseOrderService)(nil)

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(orders ports.PurchaseOrderRepository, products ports.ProductRepository, cache ports.CacheInvalidator, logger *slog.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:   orders,
		products: products,
		cache:    cache,
		logger:   logger.With(slog.String("service", "purchase_order")),
		now:      time.Now,
	}
}

// Get retrieves an order with its lines
func (s *PurchaseOrderService) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, id)
	return found(po, err, "purchase order")
}

// List lists orders matching the filter
func (s *PurchaseOrderService) List(ctx context.Context, filter domain.PurchaseOrderFilter) ([]*domain.PurchaseOrder, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return orders, nil
}

// Create validates, prices and stores a new pending order
func (s *PurchaseOrderService) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	if err := po.Validate(); err != nil {
		return err
	}
	po.PrepareForStorage(s.now())

	if err := s.orders.Create(ctx, po); err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.logger.InfoContext(ctx, "purchase order created",
		slog.Int64("purchase_order_id", po.ID),
		slog.String("order_number", po.OrderNumber),
		slog.String("total_amount", po.TotalAmount.StringFixed(2)))
	s.invalidate(ctx)
	return nil
}

// UpdateStatus moves an order along its lifecycle
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.PurchaseOrder, error) {
	po, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !po.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatus, po.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update purchase order status: %w", err)
	}
	po.Status = status

	s.logger.InfoContext(ctx, "purchase order status changed",
		slog.Int64("purchase_order_id", id),
		slog.String("status", string(status)))
	s.invalidate(ctx)
	return po, nil
}

// Delete removes an order that has not left the pending state
func (s *PurchaseOrderService) Delete(ctx context.Context, id int64) error {
	po, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if po.Status != domain.OrderPending {
		return fmt.Errorf("%w: only pending orders can be deleted", domain.ErrInvalidStatus)
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// ImportInvoice creates a pending order from invoice lines. Lines whose
// SKU is unknown are skipped and reported.
func (s *PurchaseOrderService) ImportInvoice(ctx context.Context, supplierID int64, lines []domain.InvoiceLine, notes string) (*domain.InvoiceImportResult, error) {
	result := &domain.InvoiceImportResult{}
	po := &domain.PurchaseOrder{SupplierID: supplierID, Notes: notes}

	for _, line := range lines {
		sku := strings.ToUpper(strings.TrimSpace(line.SKU))
		p, err := s.products.FindBySKU(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("failed to look up sku %s: %w", sku, err)
		}
		if p == nil {
			result.UnknownSKUs = append(result.UnknownSKUs, sku)
			continue
		}
		po.Items = append(po.Items, domain.PurchaseOrderItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	if len(po.Items) == 0 {
		return nil, fmt.Errorf("%w: invoice has no lines for known products", domain.ErrInvalidInput)
	}

	if err := s.Create(ctx, po); err != nil {
		return nil, err
	}
	result.Order = po
	return result, nil
}

func (s *PurchaseOrderService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateInventory(ctx)
	}
}
