// internal/adapters/db/inventory_repository.go
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

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var inventoryColumns = []string{
	"i.id", "i.product_id", "i.warehouse_id",
	"i.quantity_on_hand", "i.quantity_reserved", "i.unit_cost",
	"i.last_stock_update", "i.last_count_date",
}

// inventoryRepository implements ports.InventoryRepository
type inventoryRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.InventoryRepository = (*inventoryRepository)(nil)

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *Database, logger *slog.Logger) ports.InventoryRepository {
	return &inventoryRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

func entryQuery() squirrel.SelectBuilder {
	cols := append(append([]string{}, inventoryColumns...),
		"p.id", "p.name", "p.sku", "p.reorder_level", "w.name")
	return psql.Select(cols...).
		From("inventory i").
		LeftJoin("products p ON p.id = i.product_id").
		LeftJoin("warehouses w ON w.id = i.warehouse_id")
}

// Get returns the record with its product and warehouse, or nil.
func (r *inventoryRepository) Get(ctx context.Context, id int64) (*domain.InventoryEntry, error) {
	return r.findOne(ctx, entryQuery().Where(squirrel.Eq{"i.id": id}))
}

// FindByProductAndWarehouse looks a record up by its natural key.
func (r *inventoryRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID int64) (*domain.InventoryEntry, error) {
	return r.findOne(ctx, entryQuery().Where(squirrel.Eq{
		"i.product_id":   productID,
		"i.warehouse_id": warehouseID,
	}))
}

// ListByWarehouse returns every record held in a warehouse.
func (r *inventoryRepository) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*domain.InventoryEntry, error) {
	return r.findMany(ctx, entryQuery().Where(squirrel.Eq{"i.warehouse_id": warehouseID}).OrderBy("i.id"))
}

// ListAll returns every record.
func (r *inventoryRepository) ListAll(ctx context.Context) ([]*domain.InventoryEntry, error) {
	return r.findMany(ctx, entryQuery().OrderBy("i.id"))
}

// Create inserts the first record for a (product, warehouse) pair.
func (r *inventoryRepository) Create(ctx context.Context, record *domain.InventoryRecord) error {
	return createInventory(ctx, r.db, record)
}

// Save upserts the record on its natural key.
func (r *inventoryRepository) Save(ctx context.Context, record *domain.InventoryRecord) error {
	if err := saveInventory(ctx, r.db, record); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "inventory record saved",
		slog.Int64("inventory_id", record.ID),
		slog.Int("quantity_on_hand", record.QuantityOnHand))
	return nil
}

// WithinTx runs fn inside a single database transaction.
func (r *inventoryRepository) WithinTx(ctx context.Context, fn func(tx ports.InventoryTx) error) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(&inventoryTx{q: tx})
	})
}

func (r *inventoryRepository) findOne(ctx context.Context, qb squirrel.SelectBuilder) (*domain.InventoryEntry, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	entry, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", storageError(err))
	}
	return entry, nil
}

func (r *inventoryRepository) findMany(ctx context.Context, qb squirrel.SelectBuilder) ([]*domain.InventoryEntry, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory records: %w", storageError(err))
	}

	entries, err := ScanMany(rows, func(row pgx.Rows) (*domain.InventoryEntry, error) { return scanEntry(row) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory records: %w", storageError(err))
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.InventoryEntry, error) {
	var (
		e            domain.InventoryEntry
		productID    *int64
		productName  *string
		productSKU   *string
		reorderLevel *int
		warehouse    *string
	)

	err := row.Scan(
		&e.Record.ID, &e.Record.ProductID, &e.Record.WarehouseID,
		&e.Record.QuantityOnHand, &e.Record.QuantityReserved, &e.Record.UnitCost,
		&e.Record.LastStockUpdate, &e.Record.LastCountDate,
		&productID, &productName, &productSKU, &reorderLevel, &warehouse,
	)
	if err != nil {
		return nil, err
	}

	if productID != nil {
		e.Product = &domain.ProductRef{ID: *productID}
		if productName != nil {
			e.Product.Name = *productName
		}
		if productSKU != nil {
			e.Product.SKU = *productSKU
		}
		if reorderLevel != nil {
			e.Product.ReorderLevel = *reorderLevel
		}
	}
	if warehouse != nil {
		e.WarehouseName = *warehouse
	}

	return &e, nil
}

func scanRecord(row pgx.Row) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.WarehouseID,
		&rec.QuantityOnHand, &rec.QuantityReserved, &rec.UnitCost,
		&rec.LastStockUpdate, &rec.LastCountDate,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const insertInventory = `
		INSERT INTO inventory (
			product_id, warehouse_id, quantity_on_hand, quantity_reserved,
			unit_cost, last_stock_update, last_count_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

func inventoryArgs(record *domain.InventoryRecord) []interface{} {
	return []interface{}{
		record.ProductID, record.WarehouseID, record.QuantityOnHand, record.QuantityReserved,
		record.UnitCost, record.LastStockUpdate, record.LastCountDate,
	}
}

func createInventory(ctx context.Context, q ports.Querier, record *domain.InventoryRecord) error {
	if record.LastStockUpdate.IsZero() {
		record.Touch(time.Now())
	}

	err := q.QueryRow(ctx, insertInventory+" RETURNING id", inventoryArgs(record)...).Scan(&record.ID)
	if err != nil {
		err = storageError(err)
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.ErrDuplicateInventory
		}
		return fmt.Errorf("failed to create inventory record: %w", err)
	}
	return nil
}

func saveInventory(ctx context.Context, q ports.Querier, record *domain.InventoryRecord) error {
	query := insertInventory + `
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			quantity_reserved = EXCLUDED.quantity_reserved,
			unit_cost = EXCLUDED.unit_cost,
			last_stock_update = EXCLUDED.last_stock_update,
			last_count_date = EXCLUDED.last_count_date
		RETURNING id`

	err := q.QueryRow(ctx, query, inventoryArgs(record)...).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to save inventory record: %w", storageError(err))
	}
	return nil
}

// inventoryTx is the record store bound to one transaction.
type inventoryTx struct {
	q ports.Querier
}

var _ ports.InventoryTx = (*inventoryTx)(nil)

func lockedRecordQuery() squirrel.SelectBuilder {
	return psql.Select(inventoryColumns...).From("inventory i").Suffix("FOR UPDATE")
}

func (t *inventoryTx) GetForUpdate(ctx context.Context, id int64) (*domain.InventoryRecord, error) {
	return t.lockOne(ctx, lockedRecordQuery().Where(squirrel.Eq{"i.id": id}))
}

func (t *inventoryTx) FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID int64) (*domain.InventoryRecord, error) {
	return t.lockOne(ctx, lockedRecordQuery().Where(squirrel.Eq{
		"i.product_id":   productID,
		"i.warehouse_id": warehouseID,
	}))
}

// CreateIfMissing waits on a conflicting insert from another open
// transaction and reports false once that one commits.
func (t *inventoryTx) CreateIfMissing(ctx context.Context, record *domain.InventoryRecord) (bool, error) {
	query := insertInventory + `
		ON CONFLICT (product_id, warehouse_id) DO NOTHING
		RETURNING id`

	err := t.q.QueryRow(ctx, query, inventoryArgs(record)...).Scan(&record.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create inventory record: %w", storageError(err))
	}
	return true, nil
}

func (t *inventoryTx) Save(ctx context.Context, record *domain.InventoryRecord) error {
	return saveInventory(ctx, t.q, record)
}

func (t *inventoryTx) lockOne(ctx context.Context, qb squirrel.SelectBuilder) (*domain.InventoryRecord, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rec, err := ScanOne(t.q.QueryRow(ctx, query, args...), scanRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory record: %w", storageError(err))
	}
	return rec, nil
}
