package tabio

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fairlens/domain/core"
	"fairlens/domain/table"
)

// WriteCSV saves a report table as CSV, one header row then one row per
// observation.
func WriteCSV(t *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return core.IO("failed to create CSV file", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Columns()); err != nil {
		return core.IO("failed to write CSV header", err)
	}
	for row := 0; row < t.NumRows(); row++ {
		record := make([]string, 0, t.NumCols())
		for _, col := range t.Columns() {
			record = append(record, cellText(t.Cell(col, row)))
		}
		if err := w.Write(record); err != nil {
			return core.IO("failed to write CSV row", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteExcel saves a report table as an xlsx workbook with a single
// sheet. Float cells stay numeric so spreadsheet formatting applies.
func WriteExcel(t *table.Table, path, sheet string) error {
	if sheet == "" {
		sheet = "Report"
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return core.IO("failed to name sheet", err)
	}

	for ci, col := range t.Columns() {
		cell, _ := excelize.CoordinatesToCellName(ci+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return core.IO("failed to write header cell", err)
		}
		raw, _ := t.Raw(col)
		for ri, v := range raw {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			if v == nil {
				continue
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return core.IO("failed to write data cell", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return core.IO("failed to save Excel file", err)
	}
	return nil
}

func cellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return table.CellString(v)
	}
}
