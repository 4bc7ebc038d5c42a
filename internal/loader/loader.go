// Package loader reads tabular input files into raw rows for the match
// engine. The first non-empty row of a sheet or file is treated as the
// header row; fully blank data rows are skipped.
package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/records"
)

// Load reads a table file, dispatching on extension. sheet selects the
// worksheet for xlsx inputs and is ignored for csv.
func Load(path, sheet string) ([]records.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, &errors.LoadError{
			Path: path,
			Err:  errors.New("unsupported file extension, expected .xlsx, .xlsm, or .csv"),
		}
	}
}

// LoadXLSX reads one worksheet of an Excel workbook. An empty sheet name
// selects the first worksheet.
func LoadXLSX(path, sheet string) ([]records.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &errors.LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &errors.LoadError{Path: path, Err: err}
	}
	return FromGrid(rows), nil
}

// LoadCSV reads a comma-separated file with a header row.
func LoadCSV(path string) ([]records.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are a data problem, not an I/O error
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, &errors.LoadError{Path: path, Err: err}
	}
	return FromGrid(grid), nil
}

// FromGrid converts a cell grid into raw rows keyed by the header row.
// Cells beyond the header width and columns with blank headers are dropped.
// When two header cells collide after trimming, the first column wins.
func FromGrid(grid [][]string) []records.Row {
	start := -1
	for i, row := range grid {
		if !blank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	headers := make([]string, len(grid[start]))
	seen := make(map[string]bool, len(headers))
	for i, h := range grid[start] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		headers[i] = h
		seen[h] = true
	}

	var rows []records.Row
	for _, cells := range grid[start+1:] {
		if blank(cells) {
			continue
		}
		row := make(records.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
