// internal/adapters/db/dashboard_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// dashboardRepository implements ports.DashboardRepository
type dashboardRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.DashboardRepository = (*dashboardRepository)(nil)

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *Database, logger *slog.Logger) ports.DashboardRepository {
	return &dashboardRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "dashboard")),
	}
}

// Counts fills the headline counters and the inventory value.
func (r *dashboardRepository) Counts(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_active),
			(SELECT COUNT(*) FROM warehouses WHERE is_active),
			(SELECT COUNT(*) FROM suppliers WHERE is_active),
			(SELECT COUNT(*) FROM inventory i JOIN products p ON p.id = i.product_id
				WHERE i.quantity_on_hand <= p.reorder_level),
			(SELECT COUNT(*) FROM purchase_orders WHERE status IN ('Pending', 'Approved')),
			(SELECT COALESCE(SUM(quantity_on_hand * unit_cost), 0) FROM inventory)`

	stats := &domain.DashboardStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalProducts, &stats.TotalWarehouses, &stats.TotalSuppliers,
		&stats.LowStockItems, &stats.PendingOrders, &stats.TotalInventoryValue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard counts: %w", storageError(err))
	}
	return stats, nil
}

// StockByCategory sums on-hand quantity and value per category.
func (r *dashboardRepository) StockByCategory(ctx context.Context) ([]domain.CategoryStock, error) {
	query := `
		SELECT c.name,
			COALESCE(SUM(i.quantity_on_hand), 0),
			COALESCE(SUM(i.quantity_on_hand * i.unit_cost), 0)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		JOIN categories c ON c.id = p.category_id
		GROUP BY c.name
		ORDER BY c.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock by category: %w", storageError(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CategoryStock, error) {
		var cs domain.CategoryStock
		err := row.Scan(&cs.CategoryName, &cs.TotalQuantity, &cs.TotalValue)
		return cs, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock by category: %w", storageError(err))
	}
	return out, nil
}

// TopProducts ranks products by the value of stock held across warehouses.
func (r *dashboardRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductStockValue, error) {
	query := `
		SELECT p.id, p.name, p.sku,
			COALESCE(SUM(i.quantity_on_hand), 0) AS total_quantity,
			COALESCE(SUM(i.quantity_on_hand * i.unit_cost), 0) AS total_value
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		GROUP BY p.id, p.name, p.sku
		ORDER BY total_value DESC, p.id
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", storageError(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProductStockValue, error) {
		var p domain.ProductStockValue
		err := row.Scan(&p.ProductID, &p.ProductName, &p.SKU, &p.TotalQuantity, &p.TotalValue)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan top products: %w", storageError(err))
	}
	return out, nil
}

// TopSuppliers ranks active suppliers by how many products they provide.
func (r *dashboardRepository) TopSuppliers(ctx context.Context, limit int) ([]domain.SupplierStats, error) {
	query := `
		SELECT s.id, s.name, COUNT(p.id) AS product_count, COALESCE(SUM(p.unit_price), 0)
		FROM suppliers s
		LEFT JOIN products p ON p.supplier_id = s.id
		WHERE s.is_active
		GROUP BY s.id, s.name
		ORDER BY product_count DESC, s.id
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier stats: %w", storageError(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SupplierStats, error) {
		var s domain.SupplierStats
		err := row.Scan(&s.SupplierID, &s.SupplierName, &s.ProductCount, &s.TotalProductValue)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan supplier stats: %w", storageError(err))
	}
	return out, nil
}
