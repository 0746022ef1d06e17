// internal/adapters/spreadsheet/stock_count.go
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"
)

// StockCount is one counted line of a stock-count workbook.
type StockCount struct {
	Row         int   `json:"row"`
	InventoryID int64 `json:"inventoryId"`
	Counted     int   `json:"countedQuantity"`
}

// RowError reports a line that could not be read.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// StockCountHeaders are the columns of a stock-count workbook.
var StockCountHeaders = []string{"Inventory ID", "Counted Quantity"}

// ReadStockCountsFile reads the first sheet of the workbook at path. The
// first row is a header; blank lines are skipped.
func ReadStockCountsFile(path string) ([]StockCount, []RowError, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return readStockCounts(file)
}

// ReadStockCounts reads a workbook held in memory.
func ReadStockCounts(data []byte) ([]StockCount, []RowError, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return readStockCounts(file)
}

func readStockCounts(file *xlsx.File) ([]StockCount, []RowError, error) {
	if len(file.Sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	var (
		counts []StockCount
		errs   []RowError
		rowNum int
	)
	err := file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowNum++
		if rowNum == 1 {
			return nil
		}

		idStr, countStr := cellString(r, 0), cellString(r, 1)
		if idStr == "" && countStr == "" {
			return nil
		}

		id, err := parseWhole(idStr)
		if err != nil || id <= 0 {
			errs = append(errs, RowError{Row: rowNum, Message: fmt.Sprintf("invalid inventory id %q", idStr)})
			return nil
		}
		counted, err := parseWhole(countStr)
		if err != nil || counted < 0 {
			errs = append(errs, RowError{Row: rowNum, Message: fmt.Sprintf("invalid counted quantity %q", countStr)})
			return nil
		}

		counts = append(counts, StockCount{Row: rowNum, InventoryID: id, Counted: int(counted)})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return counts, errs, nil
}

// WriteStockCountTemplate writes a workbook listing the given records with
// their current on-hand quantity, ready to be counted.
func WriteStockCountTemplate(w io.Writer, lines []StockCount) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Stock Count")
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	addHeader(sheet, StockCountHeaders)
	for _, l := range lines {
		row := sheet.AddRow()
		row.AddCell().SetInt64(l.InventoryID)
		row.AddCell().SetInt(l.Counted)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
