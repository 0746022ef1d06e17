// internal/adapters/db/product_repository.go
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

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.ProductRepository = (*productRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

func productQuery() squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.sku", "p.name", "COALESCE(p.description, '')",
		"p.category_id", "COALESCE(c.name, '')",
		"p.supplier_id", "COALESCE(s.name, '')",
		"p.unit_price", "p.reorder_level", "p.unit_of_measure",
		"p.is_active", "p.created_at", "p.updated_at",
	).From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		LeftJoin("suppliers s ON s.id = p.supplier_id")
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description,
		&p.CategoryID, &p.CategoryName,
		&p.SupplierID, &p.SupplierName,
		&p.UnitPrice, &p.ReorderLevel, &p.UnitOfMeasure,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, productQuery().Where(squirrel.Eq{"p.id": id}))
}

// FindBySKU retrieves a product by SKU
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findOne(ctx, productQuery().Where(squirrel.Eq{"p.sku": sku}))
}

// List retrieves products matching the filter
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	qb := productQuery()
	if filter.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"p.category_id": *filter.CategoryID})
	}
	if filter.SupplierID != nil {
		qb = qb.Where(squirrel.Eq{"p.supplier_id": *filter.SupplierID})
	}
	if filter.IsActive != nil {
		qb = qb.Where(squirrel.Eq{"p.is_active": *filter.IsActive})
	}

	query, args, err := qb.OrderBy("p.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", storageError(err))
	}

	products, err := ScanMany(rows, func(row pgx.Rows) (*domain.Product, error) { return scanProduct(row) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", storageError(err))
	}
	return products, nil
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO products (
			sku, name, description, category_id, supplier_id,
			unit_price, reorder_level, unit_of_measure, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.UnitPrice, p.ReorderLevel, p.UnitOfMeasure, p.IsActive,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", storageError(err))
	}

	r.logger.DebugContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("sku", p.SKU))
	return nil
}

// Update overwrites a product's attributes
func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products SET
			sku = $2, name = $3, description = $4, category_id = $5, supplier_id = $6,
			unit_price = $7, reorder_level = $8, unit_of_measure = $9, is_active = $10,
			updated_at = $11
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.UnitPrice, p.ReorderLevel, p.UnitOfMeasure, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a product permanently
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		err = storageError(err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return domain.ErrInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) findOne(ctx context.Context, qb squirrel.SelectBuilder) (*domain.Product, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", storageError(err))
	}
	return p, nil
}
