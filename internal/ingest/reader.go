// Package ingest reads city directory export files (CSV, XLSX) into the raw
// tables the occupant history compiler consumes. It owns the format-specific
// concerns: sheet selection, header-row detection, and preserving physical
// row order, which the normalizer's forward-fill depends on.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"cdsearch/internal/directory"
)

// headerScanDepth bounds the header-row search in spreadsheet exports. ERIS
// files carry cover and disclaimer rows above the data; 50 rows covers every
// export seen so far.
const headerScanDepth = 50

// ErrUnsupportedFormat is returned for file extensions the reader does not
// understand.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// ReadFile reads a directory export from disk, dispatching on extension.
func ReadFile(path string) (directory.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return directory.Table{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read reads a directory export from r. The filename is used only to pick
// the format: .csv parses as CSV, .xlsx/.xlsm as a spreadsheet.
func Read(r io.Reader, filename string) (directory.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	default:
		return directory.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// readCSV treats the first row as the header; everything below is data.
func readCSV(r io.Reader) (directory.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return directory.Table{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return directory.Table{}, fmt.Errorf("file contains no rows")
	}

	return directory.Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// readWorkbook reads the first sheet of an XLSX workbook and locates the
// header row within the leading rows: first a row carrying both ADDRESS and
// YEAR (the primary ERIS layout), then a row carrying ADDRESS1 or
// COMPANY_NAME (alternate layouts), finally falling back to the first row.
func readWorkbook(r io.Reader) (directory.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return directory.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return directory.Table{}, fmt.Errorf("workbook contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return directory.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return directory.Table{}, fmt.Errorf("sheet %q contains no rows", sheets[0])
	}

	headerRow := findHeaderRow(rows)
	slog.Debug("Located header row",
		slog.String("sheet", sheets[0]),
		slog.Int("header_row", headerRow),
		slog.Int("total_rows", len(rows)))

	return directory.Table{Headers: rows[headerRow], Rows: rows[headerRow+1:]}, nil
}

func findHeaderRow(rows [][]string) int {
	depth := len(rows)
	if depth > headerScanDepth {
		depth = headerScanDepth
	}

	for i := 0; i < depth; i++ {
		cells := upperCells(rows[i])
		if cells["ADDRESS"] && cells["YEAR"] {
			return i
		}
	}
	for i := 0; i < depth; i++ {
		cells := upperCells(rows[i])
		if cells["ADDRESS1"] || cells["COMPANY_NAME"] {
			return i
		}
	}
	return 0
}

func upperCells(row []string) map[string]bool {
	cells := make(map[string]bool, len(row))
	for _, c := range row {
		cells[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	return cells
}
