// cmd/seeder/seeder.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
)

// WarehouseSeed describes a warehouse created before the product rows.
type WarehouseSeed struct {
	Code     string
	Name     string
	Address  string
	City     string
	State    string
	ZipCode  string
	Capacity int
}

// SupplierSeed describes a supplier created before the product rows.
type SupplierSeed struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	City          string
	Country       string
}

// DataSet is everything one seeding run writes.
type DataSet struct {
	Categories map[string]string
	Suppliers  []SupplierSeed
	Warehouses []WarehouseSeed
	Rows       []spreadsheet.SeedRow
}

// Summary counts what a run wrote.
type Summary struct {
	Categories int
	Suppliers  int
	Warehouses int
	Products   int
	Inventory  int
}

// txRunner is satisfied by *db.Database.
type txRunner interface {
	Transaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// Seeder writes a DataSet in a single transaction. Reference rows are looked
// up by name (categories, suppliers) or code (warehouses) so that a run can
// be repeated without duplicating them.
type Seeder struct {
	db     txRunner
	logger *slog.Logger
}

func NewSeeder(db txRunner, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// Reset empties every ledger table.
func (s *Seeder) Reset(ctx context.Context) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			TRUNCATE TABLE purchase_order_items, purchase_orders, inventory,
				products, warehouses, suppliers, categories
			RESTART IDENTITY CASCADE`)
		if err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}
		s.logger.Info("all tables truncated")
		return nil
	})
}

// Seed writes data and reports the number of rows touched per table.
func (s *Seeder) Seed(ctx context.Context, data DataSet) (*Summary, error) {
	summary := &Summary{}

	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		ids := &idCache{
			categories: make(map[string]int64),
			suppliers:  make(map[string]int64),
			warehouses: make(map[string]int64),
		}

		for name, description := range data.Categories {
			if _, err := ids.category(ctx, tx, name, description, summary); err != nil {
				return err
			}
		}
		for _, sup := range data.Suppliers {
			if _, err := ids.supplier(ctx, tx, sup, summary); err != nil {
				return err
			}
		}
		for _, wh := range data.Warehouses {
			if _, err := ids.warehouse(ctx, tx, wh, summary); err != nil {
				return err
			}
		}

		for _, row := range data.Rows {
			if err := s.seedRow(ctx, tx, ids, row, summary); err != nil {
				return fmt.Errorf("row %d (%s): %w", row.Row, row.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("seed data written",
		slog.Int("categories", summary.Categories),
		slog.Int("suppliers", summary.Suppliers),
		slog.Int("warehouses", summary.Warehouses),
		slog.Int("products", summary.Products),
		slog.Int("inventory", summary.Inventory))

	return summary, nil
}

func (s *Seeder) seedRow(ctx context.Context, tx pgx.Tx, ids *idCache, row spreadsheet.SeedRow, summary *Summary) error {
	categoryID, err := ids.category(ctx, tx, row.Category, "", summary)
	if err != nil {
		return err
	}

	var supplierID *int64
	if row.Supplier != "" {
		id, err := ids.supplier(ctx, tx, SupplierSeed{Name: row.Supplier}, summary)
		if err != nil {
			return err
		}
		supplierID = &id
	}

	var productID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO products (sku, name, category_id, supplier_id, unit_price, reorder_level, unit_of_measure)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			supplier_id = EXCLUDED.supplier_id,
			unit_price = EXCLUDED.unit_price,
			reorder_level = EXCLUDED.reorder_level,
			unit_of_measure = EXCLUDED.unit_of_measure,
			updated_at = NOW()
		RETURNING id`,
		row.SKU, row.Name, categoryID, supplierID, row.UnitPrice, row.ReorderLevel, row.UnitOfMeasure,
	).Scan(&productID)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	summary.Products++

	if row.WarehouseCode == "" {
		return nil
	}

	warehouseID, err := ids.warehouse(ctx, tx, WarehouseSeed{Code: row.WarehouseCode, Name: row.WarehouseCode}, summary)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO inventory (product_id, warehouse_id, quantity_on_hand, unit_cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			quantity_reserved = LEAST(inventory.quantity_reserved, EXCLUDED.quantity_on_hand),
			unit_cost = EXCLUDED.unit_cost,
			last_stock_update = NOW()`,
		productID, warehouseID, row.QuantityOnHand, row.UnitCost,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory: %w", err)
	}
	summary.Inventory++

	return nil
}

// idCache resolves reference rows once per run.
type idCache struct {
	categories map[string]int64
	suppliers  map[string]int64
	warehouses map[string]int64
}

func (c *idCache) category(ctx context.Context, tx pgx.Tx, name, description string, summary *Summary) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := c.categories[key]; ok {
		return id, nil
	}

	id, created, err := findOrInsert(ctx, tx,
		`SELECT id FROM categories WHERE LOWER(name) = LOWER($1) ORDER BY id LIMIT 1`, []any{name},
		`INSERT INTO categories (name, description) VALUES ($1, NULLIF($2, '')) RETURNING id`, []any{name, description},
	)
	if err != nil {
		return 0, fmt.Errorf("category %q: %w", name, err)
	}
	if created {
		summary.Categories++
	}
	c.categories[key] = id
	return id, nil
}

func (c *idCache) supplier(ctx context.Context, tx pgx.Tx, sup SupplierSeed, summary *Summary) (int64, error) {
	key := strings.ToLower(sup.Name)
	if id, ok := c.suppliers[key]; ok {
		return id, nil
	}

	id, created, err := findOrInsert(ctx, tx,
		`SELECT id FROM suppliers WHERE LOWER(name) = LOWER($1) ORDER BY id LIMIT 1`, []any{sup.Name},
		`INSERT INTO suppliers (name, contact_person, email, phone, city, country)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id`,
		[]any{sup.Name, sup.ContactPerson, sup.Email, sup.Phone, sup.City, sup.Country},
	)
	if err != nil {
		return 0, fmt.Errorf("supplier %q: %w", sup.Name, err)
	}
	if created {
		summary.Suppliers++
	}
	c.suppliers[key] = id
	return id, nil
}

func (c *idCache) warehouse(ctx context.Context, tx pgx.Tx, wh WarehouseSeed, summary *Summary) (int64, error) {
	code := strings.ToUpper(wh.Code)
	if id, ok := c.warehouses[code]; ok {
		return id, nil
	}

	id, created, err := findOrInsert(ctx, tx,
		`SELECT id FROM warehouses WHERE code = $1`, []any{code},
		`INSERT INTO warehouses (code, name, address, city, state, zip_code, capacity)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
		 RETURNING id`,
		[]any{code, wh.Name, wh.Address, wh.City, wh.State, wh.ZipCode, wh.Capacity},
	)
	if err != nil {
		return 0, fmt.Errorf("warehouse %q: %w", code, err)
	}
	if created {
		summary.Warehouses++
	}
	c.warehouses[code] = id
	return id, nil
}

func findOrInsert(ctx context.Context, tx pgx.Tx, findSQL string, findArgs []any, insertSQL string, insertArgs []any) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(ctx, findSQL, findArgs...).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up: %w", err)
	}

	if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to insert: %w", err)
	}
	return id, true, nil
}

// DefaultDataSet is the demo plant used when no seed workbook is given.
func DefaultDataSet() DataSet {
	price := decimal.RequireFromString

	return DataSet{
		Categories: map[string]string{
			"Raw Materials":  "Metals, plastics and stock used in production",
			"Components":     "Purchased parts built into finished goods",
			"Finished Goods": "Products ready for shipment",
			"MRO Supplies":   "Maintenance, repair and operations consumables",
		},
		Suppliers: []SupplierSeed{
			{Name: "Acme Metals", ContactPerson: "Dana Ruiz", Email: "orders@acmemetals.example", Phone: "555-0100", City: "Pittsburgh", Country: "USA"},
			{Name: "Precision Parts Co", ContactPerson: "Lee Chen", Email: "sales@precisionparts.example", Phone: "555-0142", City: "Detroit", Country: "USA"},
			{Name: "Industrial Supply Depot", ContactPerson: "Sam Okafor", Email: "support@isdepot.example", Phone: "555-0187", City: "Cleveland", Country: "USA"},
		},
		Warehouses: []WarehouseSeed{
			{Code: "WH-001", Name: "Main Warehouse", Address: "100 Factory Road", City: "Columbus", State: "OH", ZipCode: "43215", Capacity: 50000},
			{Code: "WH-002", Name: "East Distribution Center", Address: "42 Harbor Street", City: "Newark", State: "NJ", ZipCode: "07102", Capacity: 20000},
		},
		Rows: []spreadsheet.SeedRow{
			{Row: 1, SKU: "STL-SHEET-10", Name: "Steel Sheet 10ga", Category: "Raw Materials", Supplier: "Acme Metals", UnitPrice: price("45.00"), ReorderLevel: 100, UnitOfMeasure: "EA", WarehouseCode: "WH-001", QuantityOnHand: 850, UnitCost: price("38.50")},
			{Row: 2, SKU: "ALU-BAR-25", Name: "Aluminum Bar 25mm", Category: "Raw Materials", Supplier: "Acme Metals", UnitPrice: price("12.75"), ReorderLevel: 200, UnitOfMeasure: "M", WarehouseCode: "WH-001", QuantityOnHand: 120, UnitCost: price("10.20")},
			{Row: 3, SKU: "BRG-6204", Name: "Ball Bearing 6204", Category: "Components", Supplier: "Precision Parts Co", UnitPrice: price("3.40"), ReorderLevel: 500, UnitOfMeasure: "EA", WarehouseCode: "WH-001", QuantityOnHand: 2400, UnitCost: price("2.85")},
			{Row: 4, SKU: "MTR-24V-50", Name: "DC Motor 24V 50W", Category: "Components", Supplier: "Precision Parts Co", UnitPrice: price("89.00"), ReorderLevel: 40, UnitOfMeasure: "EA", WarehouseCode: "WH-002", QuantityOnHand: 35, UnitCost: price("72.00")},
			{Row: 5, SKU: "CNV-MOD-A", Name: "Conveyor Module A", Category: "Finished Goods", UnitPrice: price("1250.00"), ReorderLevel: 5, UnitOfMeasure: "EA", WarehouseCode: "WH-002", QuantityOnHand: 18, UnitCost: price("940.00")},
			{Row: 6, SKU: "LUB-GRS-1K", Name: "Lithium Grease 1kg", Category: "MRO Supplies", Supplier: "Industrial Supply Depot", UnitPrice: price("14.90"), ReorderLevel: 30, UnitOfMeasure: "KG", WarehouseCode: "WH-001", QuantityOnHand: 60, UnitCost: price("11.00")},
		},
	}
}
