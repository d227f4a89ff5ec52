package directory

import (
	"fmt"
	"strings"
)

// Table is a raw tabular export as handed over by the ingestion layer:
// a header row plus data rows in physical file order. Row order must match
// the source file, forward-fill depends on it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Logical column names the compiler understands.
const (
	ColumnAddress = "ADDRESS"
	ColumnYear    = "YEAR"
	ColumnListing = "LISTING"
)

// columnAliases maps each logical column to the header spellings seen across
// real directory exports (ERIS and others). Matching is case-insensitive and
// whitespace-trimmed; aliases are tried in order, so the canonical spelling
// wins when a file carries more than one candidate.
var columnAliases = map[string][]string{
	ColumnAddress: {
		"ADDRESS", "ADDRESS1", "STREET ADDRESS", "STREET_ADDRESS",
		"PROPERTY ADDRESS", "PROPERTY_ADDRESS", "SITE ADDRESS",
		"LOCATION", "STREET", "ADDR",
	},
	ColumnYear: {"YEAR"},
	ColumnListing: {
		"LISTING", "COMPANY_NAME", "FACILITY_ID", "OCCUPANT", "TENANT",
		"BUSINESS_NAME", "BUSINESS", "COMPANY", "NAME", "OCCUPANT_NAME",
	},
}

// ColumnMap holds the resolved index of each logical column within a table's
// header row. Address2 is the optional second address line (ADDRESS1 +
// ADDRESS2 exports); -1 means absent.
type ColumnMap struct {
	Address  int
	Address2 int
	Year     int
	Listing  int
}

// SchemaError reports a table that lacks one or more required logical
// columns. It fails the whole compilation; nothing row-local can recover it.
type SchemaError struct {
	Missing []string
	Headers []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input schema missing required column(s): %s (headers: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// ResolveColumns matches a table's header row against the recognized column
// aliases exactly once, before any row processing. Unrecognized headers are
// ignored. All three logical columns must resolve or the table is rejected
// with a *SchemaError naming what is missing.
func ResolveColumns(headers []string) (ColumnMap, error) {
	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToUpper(strings.TrimSpace(h))
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}

	cols := ColumnMap{Address: -1, Address2: -1, Year: -1, Listing: -1}
	cols.Address = resolveAlias(byName, columnAliases[ColumnAddress])
	cols.Year = resolveAlias(byName, columnAliases[ColumnYear])
	cols.Listing = resolveAlias(byName, columnAliases[ColumnListing])

	// ADDRESS2 only matters when the address resolved through ADDRESS1.
	if cols.Address >= 0 && strings.ToUpper(strings.TrimSpace(headers[cols.Address])) == "ADDRESS1" {
		if i, ok := byName["ADDRESS2"]; ok {
			cols.Address2 = i
		}
	}

	var missing []string
	if cols.Address < 0 {
		missing = append(missing, ColumnAddress)
	}
	if cols.Year < 0 {
		missing = append(missing, ColumnYear)
	}
	if cols.Listing < 0 {
		missing = append(missing, ColumnListing)
	}
	if len(missing) > 0 {
		return ColumnMap{}, &SchemaError{Missing: missing, Headers: headers}
	}
	return cols, nil
}

func resolveAlias(byName map[string]int, aliases []string) int {
	for _, alias := range aliases {
		if i, ok := byName[alias]; ok {
			return i
		}
	}
	return -1
}

// cell returns the trimmed value of column i in row, or "" when the row is
// shorter than the header (ragged rows are common in XLSX exports).
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
