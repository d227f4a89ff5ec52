package directory

import (
	"cdsearch/pkg/contracts/domain"
)

// YearOccupants is the per-address grouping result: directory year to the
// deduplicated set of occupants listed that year. Years without listings are
// simply absent, never synthesized as empty entries.
type YearOccupants map[int]map[string]struct{}

// group partitions normalized records by selected address, then by year.
// Address matching is case-insensitive and whitespace-normalized (MatchKey);
// occupant deduplication is exact string equality after trimming, so
// different-cased business names stay distinct. A selected address with no
// matching records yields a nil YearOccupants under its key.
func group(records []domain.ListingRecord, selections []domain.Selection) map[string]YearOccupants {
	selected := make(map[string]YearOccupants, len(selections))
	for _, sel := range selections {
		key := MatchKey(sel.Address)
		if _, ok := selected[key]; !ok {
			selected[key] = nil
		}
	}

	for _, rec := range records {
		key := MatchKey(rec.Address)
		years, ok := selected[key]
		if !ok {
			continue
		}
		if years == nil {
			years = make(YearOccupants)
			selected[key] = years
		}
		occupants, ok := years[rec.Year]
		if !ok {
			occupants = make(map[string]struct{})
			years[rec.Year] = occupants
		}
		occupants[rec.Occupant] = struct{}{}
	}

	return selected
}
