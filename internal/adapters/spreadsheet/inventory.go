// internal/adapters/spreadsheet/inventory.go
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/mfg-erp/internal/core/domain"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const inventorySheet = "Inventory"

// InventoryHeaders are the columns of an inventory export.
var InventoryHeaders = []string{
	"Inventory ID", "SKU", "Product", "Warehouse ID", "Warehouse",
	"On Hand", "Reserved", "Available", "Unit Cost", "Total Value",
	"Reorder Level", "Low Stock", "Last Stock Update", "Last Count Date",
}

// WriteInventory writes the views as a single-sheet workbook.
func WriteInventory(w io.Writer, views []*domain.InventoryView) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(inventorySheet)
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	addHeader(sheet, InventoryHeaders)

	for _, v := range views {
		row := sheet.AddRow()
		row.AddCell().SetInt64(v.ID)
		row.AddCell().SetString(v.SKU)
		row.AddCell().SetString(v.ProductName)
		row.AddCell().SetInt64(v.WarehouseID)
		row.AddCell().SetString(v.WarehouseName)
		row.AddCell().SetInt(v.QuantityOnHand)
		row.AddCell().SetInt(v.QuantityReserved)
		row.AddCell().SetInt(v.QuantityAvailable)
		setDecimal(row.AddCell(), v.UnitCost)
		setDecimal(row.AddCell(), v.TotalValue)
		row.AddCell().SetInt(v.ReorderLevel)
		row.AddCell().SetBool(v.IsLowStock)
		row.AddCell().SetString(v.LastStockUpdate.UTC().Format("2006-01-02 15:04:05"))
		if v.LastCountDate != nil {
			row.AddCell().SetString(v.LastCountDate.UTC().Format("2006-01-02 15:04:05"))
		} else {
			row.AddCell().SetString("")
		}
	}

	for i := range InventoryHeaders {
		sheet.SetColWidth(i+1, i+1, 16)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		style := cell.GetStyle()
		style.Font.Bold = true
		style.Fill.PatternType = "solid"
		style.Fill.FgColor = "CCCCCC"
	}
}

func setDecimal(cell *xlsx.Cell, d decimal.Decimal) {
	f, _ := d.Float64()
	cell.SetFloatWithFormat(f, "#,##0.00")
}

func cellString(r *xlsx.Row, i int) string {
	c := r.GetCell(i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.String())
}

// parseWhole reads a whole number, accepting "40" as well as "40.0".
func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return d.IntPart(), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
