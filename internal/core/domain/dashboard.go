// internal/core/domain/dashboard.go
package domain

import "github.com/shopspring/decimal"

// DashboardStats is the headline summary of the ERP.
type DashboardStats struct {
	TotalProducts       int                 `json:"totalProducts"`
	TotalWarehouses     int                 `json:"totalWarehouses"`
	TotalSuppliers      int                 `json:"totalSuppliers"`
	LowStockItems       int                 `json:"lowStockItems"`
	PendingOrders       int                 `json:"pendingOrders"`
	TotalInventoryValue decimal.Decimal     `json:"totalInventoryValue"`
	StockByCategory     []CategoryStock     `json:"stockByCategory"`
	TopProducts         []ProductStockValue `json:"topProducts"`
}

// CategoryStock is the stock held for one category.
type CategoryStock struct {
	CategoryName  string          `json:"categoryName"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// ProductStockValue is the stock held for one product across warehouses.
type ProductStockValue struct {
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	SKU           string          `json:"sku"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// InventoryStats summarises all inventory records.
type InventoryStats struct {
	TotalItems    int             `json:"totalItems"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	AverageValue  decimal.Decimal `json:"averageValue"`
	LowStockCount int             `json:"lowStockCount"`
}

// SupplierStats ranks a supplier by the products it provides.
type SupplierStats struct {
	SupplierID        int64           `json:"supplierId"`
	SupplierName      string          `json:"supplierName"`
	ProductCount      int             `json:"productCount"`
	TotalProductValue decimal.Decimal `json:"totalProductValue"`
}
