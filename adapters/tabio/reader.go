// Package tabio loads tabular datasets from Excel and CSV files into
// the in-memory table used by the report engine.
package tabio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fairlens/domain/core"
	"fairlens/domain/table"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a table. The first row supplies column names;
// cells that parse as floats are stored numeric, empty cells as missing.
func (r *DataReader) Read() (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.IO("input file not found: "+r.filePath, err)
	}
	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readExcel()
	}
}

func (r *DataReader) readExcel() (*table.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, core.IO("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.IO("failed to read sheet "+sheet, err)
	}
	return buildTable(rows)
}

func (r *DataReader) readCSV() (*table.Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.IO("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.IO("failed to read CSV file", err)
	}
	return buildTable(rows)
}

func buildTable(rows [][]string) (*table.Table, error) {
	if len(rows) < 2 {
		return nil, core.Validation("input file must have a header row and at least one data row")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	cols := make([][]interface{}, len(headers))
	for i := range cols {
		cols[i] = make([]interface{}, len(rows)-1)
	}
	for ri, row := range rows[1:] {
		for ci := range headers {
			var cell string
			if ci < len(row) {
				cell = strings.TrimSpace(row[ci])
			}
			cols[ci][ri] = coerceCell(cell)
		}
	}

	t := table.New()
	for i, name := range headers {
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if err := t.AddColumn(name, cols[i]); err != nil {
			return nil, core.Wrapf(err, "loading column %q", name)
		}
	}
	return t, nil
}

// coerceCell keeps numbers numeric and treats blanks as missing.
func coerceCell(cell string) interface{} {
	if cell == "" || strings.EqualFold(cell, table.Missing) {
		return nil
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}

// Column pulls a float vector out of a loaded table, erroring when the
// column is absent.
func Column(t *table.Table, name string) ([]float64, error) {
	if !t.Has(name) {
		return nil, core.Validationf("column %q not found in input data", name)
	}
	return t.Floats(name), nil
}
