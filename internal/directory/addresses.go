package directory

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cdsearch/pkg/contracts/domain"
)

var (
	houseNumberRe = regexp.MustCompile(`^\s*(\d+)`)
	unitNumberRe  = regexp.MustCompile(`#\s*(\d+)`)
)

// Inventory returns the distinct addresses present in a record stream, in
// review order: street name alphabetically, then house number numerically,
// then unit number, with the full address as tie-breaker. This keeps "9 Oak
// St" ahead of "101 Oak St" and groups a street's parcels together, which is
// how assessors scan the list.
func Inventory(records []domain.ListingRecord) []string {
	seen := make(map[string]string)
	for _, rec := range records {
		key := MatchKey(rec.Address)
		if _, ok := seen[key]; !ok {
			seen[key] = NormalizeAddress(rec.Address)
		}
	}

	addresses := make([]string, 0, len(seen))
	for _, addr := range seen {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return parseAddressKey(addresses[i]).less(parseAddressKey(addresses[j]))
	})
	return addresses
}

// addressKey is the sortable decomposition of a street address.
type addressKey struct {
	street string
	house  int
	unit   int
	full   string
}

func (k addressKey) less(o addressKey) bool {
	if k.street != o.street {
		return k.street < o.street
	}
	if k.house != o.house {
		return k.house < o.house
	}
	if k.unit != o.unit {
		return k.unit < o.unit
	}
	return k.full < o.full
}

// parseAddressKey splits "123 Oak St #4" into (OAK ST, 123, 4, full). An
// address with no leading house number sorts with house 0; same for a
// missing unit marker.
func parseAddressKey(addr string) addressKey {
	full := strings.ToUpper(NormalizeAddress(addr))

	house := 0
	if m := houseNumberRe.FindStringSubmatch(full); m != nil {
		house, _ = strconv.Atoi(m[1])
	}
	unit := 0
	if m := unitNumberRe.FindStringSubmatch(full); m != nil {
		unit, _ = strconv.Atoi(m[1])
	}

	street := houseNumberRe.ReplaceAllString(full, "")
	street = unitNumberRe.ReplaceAllString(street, " ")
	street = strings.Join(strings.Fields(street), " ")

	return addressKey{street: street, house: house, unit: unit, full: full}
}
