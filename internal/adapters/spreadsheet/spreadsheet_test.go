package spreadsheet

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/mfg-erp/internal/core/domain"
)

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, file.Save(path))
	return path
}

func TestWriteInventory(t *testing.T) {
	counted := time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC)
	views := []*domain.InventoryView{
		{
			ID: 1, ProductID: 10, SKU: "BRK-001", ProductName: "Steel Bracket",
			WarehouseID: 1, WarehouseName: "Main Warehouse",
			QuantityOnHand: 800, QuantityReserved: 100, QuantityAvailable: 700,
			UnitCost: decimal.RequireFromString("10.00"), TotalValue: decimal.RequireFromString("8000.00"),
			ReorderLevel: 50, LastStockUpdate: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			LastCountDate: &counted,
		},
		{
			ID: 2, ProductID: 11, SKU: "BLT-010", ProductName: "Hex Bolt",
			WarehouseID: 2, WarehouseName: "East Warehouse",
			QuantityOnHand: 5, QuantityAvailable: 5,
			UnitCost: decimal.RequireFromString("0.25"), TotalValue: decimal.RequireFromString("1.25"),
			ReorderLevel: 100, IsLowStock: true, LastStockUpdate: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, views))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Inventory", sheet.Name)
	assert.Equal(t, 3, sheet.MaxRow)

	header, err := sheet.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Inventory ID", header.GetCell(0).String())
	assert.Equal(t, "Last Count Date", header.GetCell(len(InventoryHeaders)-1).String())

	first, err := sheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "BRK-001", first.GetCell(1).String())
	assert.Equal(t, "Main Warehouse", first.GetCell(4).String())
	onHand, err := first.GetCell(5).Int()
	require.NoError(t, err)
	assert.Equal(t, 800, onHand)
	available, err := first.GetCell(7).Int()
	require.NoError(t, err)
	assert.Equal(t, 700, available)
	assert.Equal(t, "2025-02-28 09:00:00", first.GetCell(13).String())

	second, err := sheet.Row(2)
	require.NoError(t, err)
	assert.True(t, second.GetCell(11).Bool())
	assert.Equal(t, "", second.GetCell(13).String())
}

func TestWriteInventory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, file.Sheets[0].MaxRow)
}

func TestReadStockCountsFile(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"Inventory ID", "Counted Quantity"},
		{"1", "40"},
		{"2", "0"},
		{"abc", "5"},
		{"3", "-2"},
		{"4", "12.0"},
		{"5", "1.5"},
	})

	counts, rowErrs, err := ReadStockCountsFile(path)
	require.NoError(t, err)

	assert.Equal(t, []StockCount{
		{Row: 2, InventoryID: 1, Counted: 40},
		{Row: 3, InventoryID: 2, Counted: 0},
		{Row: 6, InventoryID: 4, Counted: 12},
	}, counts)

	require.Len(t, rowErrs, 3)
	assert.Equal(t, 4, rowErrs[0].Row)
	assert.Contains(t, rowErrs[0].Message, "inventory id")
	assert.Equal(t, 5, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Message, "counted quantity")
	assert.Equal(t, 7, rowErrs[2].Row)
	assert.Equal(t, "row 7: invalid counted quantity \"1.5\"", rowErrs[2].Error())
}

func TestReadStockCountsFile_Missing(t *testing.T) {
	_, _, err := ReadStockCountsFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestStockCountTemplate_RoundTrip(t *testing.T) {
	lines := []StockCount{
		{InventoryID: 7, Counted: 120},
		{InventoryID: 9, Counted: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStockCountTemplate(&buf, lines))

	counts, rowErrs, err := ReadStockCounts(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Equal(t, []StockCount{
		{Row: 2, InventoryID: 7, Counted: 120},
		{Row: 3, InventoryID: 9, Counted: 3},
	}, counts)
}

func TestReadSeedFile(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		SeedHeaders,
		{"brk-001", "Steel Bracket", "Hardware", "Acme Metals", "12.50", "50", "", "wh-001", "800", "10.00"},
		{"BLT-010", "Hex Bolt", "Fasteners", "", "0.30", "", "BOX", "WH-002", "", ""},
		{"BAD-1", "Broken", "", "", "1", "", "", "", "", ""},
		{"BAD-2", "Negative", "Hardware", "", "-1", "", "", "", "", ""},
	})

	rows, rowErrs, err := ReadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "BRK-001", rows[0].SKU)
	assert.Equal(t, "WH-001", rows[0].WarehouseCode)
	assert.Equal(t, "EA", rows[0].UnitOfMeasure)
	assert.Equal(t, 50, rows[0].ReorderLevel)
	assert.Equal(t, 800, rows[0].QuantityOnHand)
	assert.True(t, rows[0].UnitCost.Equal(decimal.RequireFromString("10")))

	assert.Equal(t, "BOX", rows[1].UnitOfMeasure)
	assert.Equal(t, 0, rows[1].QuantityOnHand)
	assert.True(t, rows[1].UnitCost.Equal(decimal.RequireFromString("0.30")))

	require.Len(t, rowErrs, 2)
	assert.Equal(t, 4, rowErrs[0].Row)
	assert.Equal(t, 5, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Message, "unit price")
}
