// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/ammerola/mfg-erp/internal/core/domain"
)

// ProductRepository defines the persistence port for products.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines the persistence port for categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Deactivate(ctx context.Context, id int64) error
}

// SupplierRepository defines the persistence port for suppliers.
type SupplierRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
	Create(ctx context.Context, s *domain.Supplier) error
	Update(ctx context.Context, s *domain.Supplier) error
	Deactivate(ctx context.Context, id int64) error
}

// WarehouseRepository defines the persistence port for warehouses.
type WarehouseRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Warehouse, error)
	List(ctx context.Context) ([]*domain.Warehouse, error)
	Create(ctx context.Context, w *domain.Warehouse) error
	Update(ctx context.Context, w *domain.Warehouse) error
	Deactivate(ctx context.Context, id int64) error
}

// PurchaseOrderRepository defines the persistence port for purchase orders.
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter domain.PurchaseOrderFilter) ([]*domain.PurchaseOrder, error)
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}

// DashboardRepository runs the reporting aggregates.
type DashboardRepository interface {
	Counts(ctx context.Context) (*domain.DashboardStats, error)
	StockByCategory(ctx context.Context) ([]domain.CategoryStock, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductStockValue, error)
	TopSuppliers(ctx context.Context, limit int) ([]domain.SupplierStats, error)
}

// CatalogService is the application port for products and the reference
// data around them.
type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, id int64, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, id int64, c *domain.Category) error
	DeactivateCategory(ctx context.Context, id int64) error

	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
	CreateSupplier(ctx context.Context, s *domain.Supplier) error
	UpdateSupplier(ctx context.Context, id int64, s *domain.Supplier) error
	DeactivateSupplier(ctx context.Context, id int64) error

	GetWarehouse(ctx context.Context, id int64) (*domain.WarehouseDetail, error)
	ListWarehouses(ctx context.Context) ([]*domain.Warehouse, error)
	CreateWarehouse(ctx context.Context, w *domain.Warehouse) error
	UpdateWarehouse(ctx context.Context, id int64, w *domain.Warehouse) error
	DeactivateWarehouse(ctx context.Context, id int64) error
}

// PurchaseOrderService is the application port for purchase orders.
type PurchaseOrderService interface {
	Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter domain.PurchaseOrderFilter) ([]*domain.PurchaseOrder, error)
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.PurchaseOrder, error)
	Delete(ctx context.Context, id int64) error
	ImportInvoice(ctx context.Context, supplierID int64, lines []domain.InvoiceLine, notes string) (*domain.InvoiceImportResult, error)
}

// DashboardService serves the cached reporting views.
type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	InventoryStats(ctx context.Context) (*domain.InventoryStats, error)
	SupplierStats(ctx context.Context) ([]domain.SupplierStats, error)
	Refresh(ctx context.Context) error
}
