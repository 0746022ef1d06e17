// test/benchmarks/helpers.go
package benchmarks

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/core/domain"
)

// createEntries builds n ledger entries spread over four warehouses, every
// fifth one below its reorder level.
func createEntries(n int) []*domain.InventoryEntry {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]*domain.InventoryEntry, n)
	for i := range entries {
		onHand := 100 + i%400
		if i%5 == 0 {
			onHand = i % 20
		}
		entries[i] = &domain.InventoryEntry{
			Record: domain.InventoryRecord{
				ID:               int64(i + 1),
				ProductID:        int64(i + 1),
				WarehouseID:      int64(i%4 + 1),
				QuantityOnHand:   onHand,
				QuantityReserved: onHand / 10,
				UnitCost:         decimal.New(int64(1250+i), -2),
				LastStockUpdate:  now,
			},
			Product: &domain.ProductRef{
				ID:           int64(i + 1),
				Name:         fmt.Sprintf("Component %d", i),
				SKU:          fmt.Sprintf("CMP-%05d", i),
				ReorderLevel: 25,
			},
			WarehouseName: fmt.Sprintf("Warehouse %d", i%4+1),
		}
	}
	return entries
}

func createViews(n int) []*domain.InventoryView {
	entries := createEntries(n)
	views := make([]*domain.InventoryView, len(entries))
	for i, e := range entries {
		views[i] = domain.NewInventoryView(e)
	}
	return views
}

// createInvoiceText returns the text lines of a supplier invoice with n
// items.
func createInvoiceText(n int) []string {
	lines := []string{
		"Precision Parts Co",
		"Invoice INV-2025-0042",
		"SKU  QTY  PRICE  TOTAL",
	}
	for i := 0; i < n; i++ {
		qty := i%50 + 1
		lines = append(lines, fmt.Sprintf("CMP-%05d %d $%d.25 $%d.25", i, qty, i%90+1, qty*(i%90+1)))
	}
	return append(lines, "SUBTOTAL $12,345.00", "Thank you for your business")
}

// createStockCountWorkbook returns an xlsx workbook with n counted lines.
func createStockCountWorkbook(n int) []byte {
	lines := make([]spreadsheet.StockCount, n)
	for i := range lines {
		lines[i] = spreadsheet.StockCount{InventoryID: int64(i + 1), Counted: i % 300}
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteStockCountTemplate(&buf, lines); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
