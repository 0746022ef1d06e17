// internal/core/ports/inventory.go
package ports

import (
	"context"

	"github.com/ammerola/mfg-erp/internal/core/domain"
)

// InventoryRepository is the inventory record store. Lookups return
// nil, nil when no row matches.
type InventoryRepository interface {
	Get(ctx context.Context, id int64) (*domain.InventoryEntry, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID int64) (*domain.InventoryEntry, error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*domain.InventoryEntry, error)
	ListAll(ctx context.Context) ([]*domain.InventoryEntry, error)
	Create(ctx context.Context, record *domain.InventoryRecord) error
	Save(ctx context.Context, record *domain.InventoryRecord) error

	// WithinTx runs fn with a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx InventoryTx) error) error
}

// InventoryTx is the record store inside a transaction. The ForUpdate
// lookups lock the returned row until the transaction ends.
type InventoryTx interface {
	GetForUpdate(ctx context.Context, id int64) (*domain.InventoryRecord, error)
	FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID int64) (*domain.InventoryRecord, error)
	// CreateIfMissing inserts record unless its product and warehouse are
	// already tracked, and reports whether it inserted.
	CreateIfMissing(ctx context.Context, record *domain.InventoryRecord) (bool, error)
	Save(ctx context.Context, record *domain.InventoryRecord) error
}

// LedgerService is the only component that mutates stock quantities.
type LedgerService interface {
	ReadDetail(ctx context.Context, id int64) (*domain.InventoryView, error)
	List(ctx context.Context, filter domain.InventoryFilter) ([]*domain.InventoryView, error)
	LowStock(ctx context.Context) ([]*domain.InventoryView, error)
	Adjust(ctx context.Context, id int64, req domain.AdjustInventory) (*domain.InventoryView, error)
	Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error)
	RecordCount(ctx context.Context, id int64, counted int) (*domain.InventoryView, error)
	Track(ctx context.Context, req domain.CreateInventory) (*domain.InventoryView, error)
}

// AlertPublisher delivers reorder alerts to downstream consumers.
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alerts ...domain.LowStockAlert) error
	Close() error
}

// ReorderNotifier publishes alerts for the low-stock views it is given,
// suppressing repeats inside its dedupe window. It returns how many
// alerts were published.
type ReorderNotifier interface {
	Notify(ctx context.Context, views ...*domain.InventoryView) (int, error)
}
