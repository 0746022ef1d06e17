// internal/adapters/db/reference_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// deactivate soft deletes a row of a reference table.
func deactivate(ctx context.Context, q ports.Querier, table string, id int64) error {
	tag, err := q.Exec(ctx, "UPDATE "+table+" SET is_active = FALSE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", table, storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func listAll[T any](ctx context.Context, q ports.Querier, query string, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, storageError(err)
	}
	items, err := ScanMany(rows, func(row pgx.Rows) (*T, error) { return scan(row) })
	if err != nil {
		return nil, storageError(err)
	}
	return items, nil
}

// categoryRepository implements ports.CategoryRepository
type categoryRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.CategoryRepository = (*categoryRepository)(nil)

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *Database, logger *slog.Logger) ports.CategoryRepository {
	return &categoryRepository{db: db, logger: logger.With(slog.String("repository", "category"))}
}

const categoryColumns = `id, name, COALESCE(description, ''), is_active, created_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := ScanOne(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id), scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", storageError(err))
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	items, err := listAll(ctx, r.db, `SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY name`, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return items, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	c.IsActive = true
	c.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description, is_active, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Description, c.IsActive, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", storageError(err))
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, is_active = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.db, "categories", id)
}

// supplierRepository implements ports.SupplierRepository
type supplierRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.SupplierRepository = (*supplierRepository)(nil)

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *Database, logger *slog.Logger) ports.SupplierRepository {
	return &supplierRepository{db: db, logger: logger.With(slog.String("repository", "supplier"))}
}

const supplierColumns = `id, name, COALESCE(contact_person, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(address, ''), COALESCE(city, ''), COALESCE(country, ''), is_active, created_at`

func scanSupplier(row pgx.Row) (*domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone,
		&s.Address, &s.City, &s.Country, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	s, err := ScanOne(r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id), scanSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", storageError(err))
	}
	return s, nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	items, err := listAll(ctx, r.db, `SELECT `+supplierColumns+` FROM suppliers WHERE is_active ORDER BY name`, scanSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return items, nil
}

func (r *supplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	s.IsActive = true
	s.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address, city, country, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, s.City, s.Country, s.IsActive, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", storageError(err))
	}
	return nil
}

func (r *supplierRepository) Update(ctx context.Context, s *domain.Supplier) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE suppliers SET name = $2, contact_person = $3, email = $4, phone = $5,
			address = $6, city = $7, country = $8, is_active = $9
		WHERE id = $1`,
		s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, s.City, s.Country, s.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *supplierRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.db, "suppliers", id)
}

// warehouseRepository implements ports.WarehouseRepository
type warehouseRepository struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.WarehouseRepository = (*warehouseRepository)(nil)

// NewWarehouseRepository creates a new warehouse repository
func NewWarehouseRepository(db *Database, logger *slog.Logger) ports.WarehouseRepository {
	return &warehouseRepository{db: db, logger: logger.With(slog.String("repository", "warehouse"))}
}

const warehouseColumns = `id, code, name, COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''),
	COALESCE(zip_code, ''), capacity, is_active, created_at`

func scanWarehouse(row pgx.Row) (*domain.Warehouse, error) {
	var w domain.Warehouse
	err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.City, &w.State,
		&w.ZipCode, &w.Capacity, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepository) FindByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	w, err := ScanOne(r.db.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id), scanWarehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse: %w", storageError(err))
	}
	return w, nil
}

func (r *warehouseRepository) List(ctx context.Context) ([]*domain.Warehouse, error) {
	items, err := listAll(ctx, r.db, `SELECT `+warehouseColumns+` FROM warehouses WHERE is_active ORDER BY code`, scanWarehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return items, nil
}

func (r *warehouseRepository) Create(ctx context.Context, w *domain.Warehouse) error {
	w.IsActive = true
	w.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO warehouses (code, name, address, city, state, zip_code, capacity, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		w.Code, w.Name, w.Address, w.City, w.State, w.ZipCode, w.Capacity, w.IsActive, w.CreatedAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("failed to create warehouse: %w", storageError(err))
	}
	return nil
}

func (r *warehouseRepository) Update(ctx context.Context, w *domain.Warehouse) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE warehouses SET code = $2, name = $3, address = $4, city = $5, state = $6,
			zip_code = $7, capacity = $8, is_active = $9
		WHERE id = $1`,
		w.ID, w.Code, w.Name, w.Address, w.City, w.State, w.ZipCode, w.Capacity, w.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update warehouse: %w", storageError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *warehouseRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.db, "warehouses", id)
}
