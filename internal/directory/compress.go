package directory

import (
	"sort"
	"strings"

	"cdsearch/pkg/contracts/domain"
)

// Compress walks one address's year-to-occupants map in ascending year order
// and merges adjacent years whose occupant sets are identical into a single
// range. Two conditions must both hold to extend the current range: the
// occupant sets are set-equal, and the year is exactly endYear+1. A missing
// directory volume therefore splits a range even when the occupants did not
// change.
//
// Occupants within a range are ordered case-insensitively (ties broken
// case-sensitively), so compressing the same map always yields identical
// output.
func Compress(years YearOccupants) []domain.OccupantRange {
	if len(years) == 0 {
		return nil
	}

	ordered := make([]int, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Ints(ordered)

	var ranges []domain.OccupantRange
	current := domain.OccupantRange{
		StartYear: ordered[0],
		EndYear:   ordered[0],
		Occupants: sortedOccupants(years[ordered[0]]),
	}

	for _, year := range ordered[1:] {
		occupants := years[year]
		if year == current.EndYear+1 && setEqual(occupants, current.Occupants) {
			current.EndYear = year
			continue
		}
		ranges = append(ranges, current)
		current = domain.OccupantRange{
			StartYear: year,
			EndYear:   year,
			Occupants: sortedOccupants(occupants),
		}
	}

	return append(ranges, current)
}

// sortedOccupants flattens an occupant set into the deterministic
// presentation order: lexicographic, case-insensitive, case-sensitive
// tie-break.
func sortedOccupants(set map[string]struct{}) []string {
	occupants := make([]string, 0, len(set))
	for o := range set {
		occupants = append(occupants, o)
	}
	sort.Slice(occupants, func(i, j int) bool {
		li, lj := strings.ToLower(occupants[i]), strings.ToLower(occupants[j])
		if li != lj {
			return li < lj
		}
		return occupants[i] < occupants[j]
	})
	return occupants
}

func setEqual(set map[string]struct{}, occupants []string) bool {
	if len(set) != len(occupants) {
		return false
	}
	for _, o := range occupants {
		if _, ok := set[o]; !ok {
			return false
		}
	}
	return true
}
