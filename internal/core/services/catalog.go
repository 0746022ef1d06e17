// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// DefaultProductCacheTTL is how long a product stays cached.
const DefaultProductCacheTTL = 10 * time.Minute

// CatalogRepositories groups the stores the catalog service reads and writes.
type CatalogRepositories struct {
	Products   ports.ProductRepository
	Categories ports.CategoryRepository
	Suppliers  ports.SupplierRepository
	Warehouses ports.WarehouseRepository
	Inventory  ports.InventoryRepository
}

// CatalogService manages products and their reference data
type CatalogService struct {
	repos       CatalogRepositories
	cache       ports.CacheRepository
	invalidator ports.CacheInvalidator
	logger      *slog.Logger
	productTTL  time.Duration
}

var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. cache and invalidator
// may be nil.
func NewCatalogService(repos CatalogRepositories, cache ports.CacheRepository, invalidator ports.CacheInvalidator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repos:       repos,
		cache:       cache,
		invalidator: invalidator,
		logger:      logger.With(slog.String("service", "catalog")),
		productTTL:  DefaultProductCacheTTL,
	}
}

// WithProductTTL overrides the product cache lifetime.
func (s *CatalogService) WithProductTTL(ttl time.Duration) *CatalogService {
	if ttl > 0 {
		s.productTTL = ttl
	}
	return s
}

// GetProduct retrieves a product, served from cache when possible.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	fetch := func() (interface{}, error) {
		p, err := s.repos.Products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		return p, nil
	}

	if s.cache == nil {
		v, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		return v.(*domain.Product), nil
	}

	var p domain.Product
	key := ports.PrefixProduct.Key(strconv.FormatInt(id, 10))
	if err := s.cache.GetOrSet(ctx, key, &p, fetch, s.productTTL); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// ListProducts lists products matching the filter
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.repos.Products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateProduct validates and stores a new product
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	p.IsActive = true
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repos.Products.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("sku", p.SKU))
	s.invalidate(ctx)
	return nil
}

// UpdateProduct overwrites an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, p *domain.Product) error {
	p.ID = id
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeleteProduct removes a product that no inventory or order references
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repos.Products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	s.invalidate(ctx)
	return nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repos.Categories.FindByID(ctx, id)
	return found(c, err, "category")
}

// ListCategories lists active categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	items, err := s.repos.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return items, nil
}

// CreateCategory stores a new category
func (s *CatalogService) CreateCategory(ctx context.Context, c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory overwrites a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, c *domain.Category) error {
	c.ID = id
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeactivateCategory soft deletes a category
func (s *CatalogService) DeactivateCategory(ctx context.Context, id int64) error {
	if err := s.repos.Categories.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// GetSupplier retrieves a supplier by ID
func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	sup, err := s.repos.Suppliers.FindByID(ctx, id)
	return found(sup, err, "supplier")
}

// ListSuppliers lists active suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	items, err := s.repos.Suppliers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return items, nil
}

// CreateSupplier stores a new supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, sup *domain.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	if err := s.repos.Suppliers.Create(ctx, sup); err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// UpdateSupplier overwrites a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, id int64, sup *domain.Supplier) error {
	sup.ID = id
	if err := sup.Validate(); err != nil {
		return err
	}
	if err := s.repos.Suppliers.Update(ctx, sup); err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeactivateSupplier soft deletes a supplier
func (s *CatalogService) DeactivateSupplier(ctx context.Context, id int64) error {
	if err := s.repos.Suppliers.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate supplier: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// GetWarehouse retrieves a warehouse with the stock it holds
func (s *CatalogService) GetWarehouse(ctx context.Context, id int64) (*domain.WarehouseDetail, error) {
	w, err := s.repos.Warehouses.FindByID(ctx, id)
	if w, err = found(w, err, "warehouse"); err != nil {
		return nil, err
	}

	entries, err := s.repos.Inventory.ListByWarehouse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouse inventory: %w", err)
	}

	detail := &domain.WarehouseDetail{
		Warehouse:  *w,
		Inventory:  make([]*domain.InventoryView, 0, len(entries)),
		TotalValue: decimal.Zero,
	}
	for _, e := range entries {
		v := domain.NewInventoryView(e)
		detail.Inventory = append(detail.Inventory, v)
		detail.TotalQuantity += v.QuantityOnHand
		detail.TotalValue = detail.TotalValue.Add(v.TotalValue)
	}
	return detail, nil
}

// ListWarehouses lists active warehouses
func (s *CatalogService) ListWarehouses(ctx context.Context) ([]*domain.Warehouse, error) {
	items, err := s.repos.Warehouses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return items, nil
}

// CreateWarehouse stores a new warehouse
func (s *CatalogService) CreateWarehouse(ctx context.Context, w *domain.Warehouse) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := s.repos.Warehouses.Create(ctx, w); err != nil {
		return fmt.Errorf("failed to create warehouse: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// UpdateWarehouse overwrites a warehouse
func (s *CatalogService) UpdateWarehouse(ctx context.Context, id int64, w *domain.Warehouse) error {
	w.ID = id
	if err := w.Validate(); err != nil {
		return err
	}
	if err := s.repos.Warehouses.Update(ctx, w); err != nil {
		return fmt.Errorf("failed to update warehouse: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeactivateWarehouse soft deletes a warehouse
func (s *CatalogService) DeactivateWarehouse(ctx context.Context, id int64) error {
	if err := s.repos.Warehouses.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate warehouse: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCatalog(ctx)
	}
}

// found maps a nil lookup result to ErrNotFound.
func found[T any](v *T, err error, name string) (*T, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
