// Package excel reads measurement samples from .xlsx and .csv files.
// The engine never does I/O itself; this adapter turns a named column into a
// validated Sample at the boundary.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vvengine/domain/core"
)

// DataReader handles reading Excel and CSV measurement files
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

// ReadColumn reads the named column into a validated Sample. Blank cells are
// skipped; any non-numeric cell is an error so a typo cannot silently shrink
// the sample.
func (r *DataReader) ReadColumn(column string) (core.Sample, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return core.Sample{}, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return core.Sample{}, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return core.Sample{}, err
	}

	if len(rows) < 2 {
		return core.Sample{}, fmt.Errorf("file must have at least a header row and one data row")
	}
	return extractColumn(rows, column)
}

// readExcelRows reads Sheet1 of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func extractColumn(rows [][]string, column string) (core.Sample, error) {
	header := rows[0]
	colIdx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		return core.Sample{}, fmt.Errorf("column %q not found in header %v", column, header)
	}

	var values []float64
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if colIdx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[colIdx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return core.Sample{}, fmt.Errorf("row %d, column %q: %q is not numeric", i+1, column, cell)
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return core.Sample{}, fmt.Errorf("column %q contains no numeric values", column)
	}
	return core.NewSample(values)
}
