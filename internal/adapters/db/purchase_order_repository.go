// internal/adapters/db/purchase_order_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// purchaseOrderRepository implements ports.PurchaseOrderRepository
type purchaseOrderRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.PurchaseOrderRepository = (*purchaseOrderRepository)(nil)

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *Database, logger *slog.Logger) ports.PurchaseOrderRepository {
	return &purchaseOrderRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "purchase_order")),
	}
}

func purchaseOrderQuery() squirrel.SelectBuilder {
	return psql.Select(
		"po.id", "po.order_number", "po.supplier_id", "COALESCE(s.name, '')",
		"po.order_date", "po.expected_delivery_date", "po.status",
		"po.total_amount", "COALESCE(po.notes, '')", "po.created_at",
	).From("purchase_orders po").
		LeftJoin("suppliers s ON s.id = po.supplier_id")
}

func scanPurchaseOrder(row pgx.Row) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := row.Scan(
		&po.ID, &po.OrderNumber, &po.SupplierID, &po.SupplierName,
		&po.OrderDate, &po.ExpectedDeliveryDate, &po.Status,
		&po.TotalAmount, &po.Notes, &po.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.Items = []domain.PurchaseOrderItem{}
	return &po, nil
}

// FindByID retrieves an order with its lines
func (r *purchaseOrderRepository) FindByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	query, args, err := purchaseOrderQuery().Where(squirrel.Eq{"po.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	po, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanPurchaseOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase order: %w", storageError(err))
	}
	if po == nil {
		return nil, nil
	}

	items, err := r.loadItems(ctx, []int64{po.ID})
	if err != nil {
		return nil, err
	}
	po.Items = items[po.ID]
	if po.Items == nil {
		po.Items = []domain.PurchaseOrderItem{}
	}
	return po, nil
}

// List retrieves orders matching the filter, newest first
func (r *purchaseOrderRepository) List(ctx context.Context, filter domain.PurchaseOrderFilter) ([]*domain.PurchaseOrder, error) {
	qb := purchaseOrderQuery()
	if filter.Status != nil {
		qb = qb.Where(squirrel.Eq{"po.status": string(*filter.Status)})
	}
	if filter.SupplierID != nil {
		qb = qb.Where(squirrel.Eq{"po.supplier_id": *filter.SupplierID})
	}

	query, args, err := qb.OrderBy("po.order_date DESC", "po.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", storageError(err))
	}
	orders, err := ScanMany(rows, func(row pgx.Rows) (*domain.PurchaseOrder, error) { return scanPurchaseOrder(row) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase orders: %w", storageError(err))
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, po := range orders {
		ids[i] = po.ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, po := range orders {
		if lines, ok := items[po.ID]; ok {
			po.Items = lines
		}
	}
	return orders, nil
}

func (r *purchaseOrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.PurchaseOrderItem, error) {
	query, args, err := psql.Select(
		"poi.id", "poi.purchase_order_id", "poi.product_id",
		"COALESCE(p.name, '')", "COALESCE(p.sku, '')",
		"poi.quantity", "poi.unit_price", "poi.line_total",
	).From("purchase_order_items poi").
		LeftJoin("products p ON p.id = poi.product_id").
		Where(squirrel.Eq{"poi.purchase_order_id": orderIDs}).
		OrderBy("poi.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase order items: %w", storageError(err))
	}
	defer rows.Close()

	items := make(map[int64][]domain.PurchaseOrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.ProductName, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		items[it.PurchaseOrderID] = append(items[it.PurchaseOrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase order items: %w", storageError(err))
	}
	return items, nil
}

// Create inserts the order and its lines in one transaction
func (r *purchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	po.CreatedAt = time.Now().UTC()

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO purchase_orders (
				order_number, supplier_id, order_date, expected_delivery_date,
				status, total_amount, notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			po.OrderNumber, po.SupplierID, po.OrderDate, po.ExpectedDeliveryDate,
			string(po.Status), po.TotalAmount, po.Notes, po.CreatedAt,
		).Scan(&po.ID)
		if err != nil {
			return fmt.Errorf("failed to create purchase order: %w", storageError(err))
		}

		batch := &pgx.Batch{}
		for i := range po.Items {
			po.Items[i].PurchaseOrderID = po.ID
			batch.Queue(`
				INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				po.ID, po.Items[i].ProductID, po.Items[i].Quantity, po.Items[i].UnitPrice, po.Items[i].LineTotal)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range po.Items {
			if err := br.QueryRow().Scan(&po.Items[i].ID); err != nil {
				return fmt.Errorf("failed to save item %d: %w", i, storageError(err))
			}
		}
		return nil
	})
}

// UpdateStatus sets the order status
func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE purchase_orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update purchase order status: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an order that is still pending
func (r *purchaseOrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1 AND status = $2`, id, string(domain.OrderPending))
	if err != nil {
		err = storageError(err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return domain.ErrInUse
		}
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
