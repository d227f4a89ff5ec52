package directory

import (
	"strconv"
	"strings"

	"cdsearch/pkg/contracts/domain"
)

// DropStats counts rows the normalizer discarded, by reason. The counts are
// advisory diagnostics; dropped rows never abort a run.
type DropStats struct {
	NoAddress     int `json:"no_address"`
	BadYear       int `json:"bad_year"`
	EmptyOccupant int `json:"empty_occupant"`
}

// Total returns the number of rows dropped across all reasons.
func (s DropStats) Total() int {
	return s.NoAddress + s.BadYear + s.EmptyOccupant
}

// Normalize turns a raw table into the canonical listing record stream.
// Column resolution happens once up front; a missing required column fails
// the whole table with a *SchemaError.
//
// Rows are scanned in file order carrying a "last known address" accumulator:
// a blank address cell inherits the nearest preceding non-blank address.
// Rows that still have no address after forward-fill, rows whose year cell is
// not a 4-digit number, and rows whose listing is empty after trimming are
// dropped and counted, never fatal.
func Normalize(table Table) ([]domain.ListingRecord, DropStats, error) {
	cols, err := ResolveColumns(table.Headers)
	if err != nil {
		return nil, DropStats{}, err
	}

	var (
		records  []domain.ListingRecord
		stats    DropStats
		lastAddr string
	)

	for _, row := range table.Rows {
		addr := NormalizeAddress(joinAddress(cell(row, cols.Address), cell(row, cols.Address2)))
		if addr == "" {
			addr = lastAddr
		} else {
			lastAddr = addr
		}
		if addr == "" {
			stats.NoAddress++
			continue
		}

		year, ok := parseYear(cell(row, cols.Year))
		if !ok {
			stats.BadYear++
			continue
		}

		occupant := cell(row, cols.Listing)
		if occupant == "" {
			stats.EmptyOccupant++
			continue
		}

		records = append(records, domain.ListingRecord{
			Address:  addr,
			Year:     year,
			Occupant: occupant,
		})
	}

	return records, stats, nil
}

// NormalizeAddress trims an address and collapses internal whitespace runs to
// single spaces. Case is preserved for display; MatchKey folds it for
// matching.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MatchKey returns the canonical comparison form of an address: normalized
// whitespace, lower-cased. Selection sets and records are matched on this
// key so header casing in the source file never splits an address.
func MatchKey(addr string) string {
	return strings.ToLower(NormalizeAddress(addr))
}

func joinAddress(line1, line2 string) string {
	if line2 == "" {
		return line1
	}
	return strings.TrimSpace(line1 + " " + line2)
}

// parseYear accepts plain integers plus the "1990.0" spelling spreadsheet
// exports produce for numeric cells. Only 4-digit positive years qualify.
func parseYear(s string) (int, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		year = int(f)
	}

	if year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}
