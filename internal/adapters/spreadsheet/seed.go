// internal/adapters/spreadsheet/seed.go
package spreadsheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// SeedRow is one product line of a seed workbook, with its opening stock in
// one warehouse.
type SeedRow struct {
	Row            int
	SKU            string
	Name           string
	Category       string
	Supplier       string
	UnitPrice      decimal.Decimal
	ReorderLevel   int
	UnitOfMeasure  string
	WarehouseCode  string
	QuantityOnHand int
	UnitCost       decimal.Decimal
}

// SeedHeaders are the columns of a seed workbook.
var SeedHeaders = []string{
	"SKU", "Name", "Category", "Supplier", "Unit Price", "Reorder Level",
	"Unit Of Measure", "Warehouse Code", "Quantity On Hand", "Unit Cost",
}

// ReadSeedFile reads product rows from the first sheet of the workbook at
// path.
func ReadSeedFile(path string) ([]SeedRow, []RowError, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	var (
		rows   []SeedRow
		errs   []RowError
		rowNum int
	)
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowNum++
		if rowNum == 1 {
			return nil
		}

		row, err := parseSeedRow(r)
		if err != nil {
			if !errors.Is(err, errBlankRow) {
				errs = append(errs, RowError{Row: rowNum, Message: err.Error()})
			}
			return nil
		}
		row.Row = rowNum
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return rows, errs, nil
}

var errBlankRow = errors.New("blank row")

func parseSeedRow(r *xlsx.Row) (SeedRow, error) {
	row := SeedRow{
		SKU:           strings.ToUpper(cellString(r, 0)),
		Name:          cellString(r, 1),
		Category:      cellString(r, 2),
		Supplier:      cellString(r, 3),
		UnitOfMeasure: cellString(r, 6),
		WarehouseCode: strings.ToUpper(cellString(r, 7)),
	}
	if row.SKU == "" && row.Name == "" {
		return row, errBlankRow
	}
	if row.SKU == "" || row.Name == "" || row.Category == "" {
		return row, fmt.Errorf("sku, name and category are required")
	}

	var err error
	if row.UnitPrice, err = parseDecimal(cellString(r, 4)); err != nil || row.UnitPrice.IsNegative() {
		return row, fmt.Errorf("invalid unit price %q", cellString(r, 4))
	}

	if s := cellString(r, 5); s != "" {
		n, err := parseWhole(s)
		if err != nil || n < 0 {
			return row, fmt.Errorf("invalid reorder level %q", s)
		}
		row.ReorderLevel = int(n)
	}

	if s := cellString(r, 8); s != "" {
		n, err := parseWhole(s)
		if err != nil || n < 0 {
			return row, fmt.Errorf("invalid quantity on hand %q", s)
		}
		row.QuantityOnHand = int(n)
	}

	if row.UnitCost, err = parseDecimal(cellString(r, 9)); err != nil || row.UnitCost.IsNegative() {
		return row, fmt.Errorf("invalid unit cost %q", cellString(r, 9))
	}
	if row.UnitCost.IsZero() {
		row.UnitCost = row.UnitPrice
	}

	if row.UnitOfMeasure == "" {
		row.UnitOfMeasure = "EA"
	}

	return row, nil
}
