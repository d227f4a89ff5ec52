package directory

import (
	"cdsearch/pkg/contracts/domain"
)

// CompileSubject compiles one occupant history per subject address. The
// output preserves selection order; an address with no matching records
// yields a history with no ranges rather than an error.
func CompileSubject(records []domain.ListingRecord, addresses []string) []domain.AddressHistory {
	selections := make([]domain.Selection, len(addresses))
	for i, addr := range addresses {
		selections[i] = domain.Selection{Address: addr}
	}
	return compile(records, selections)
}

// CompileAdjoining compiles one occupant history per adjoining property
// selection. The direction tag is carried through to the output unchanged;
// it never influences grouping or compression.
func CompileAdjoining(records []domain.ListingRecord, selections []domain.Selection) []domain.AddressHistory {
	return compile(records, selections)
}

// compile is the single parameterized pipeline behind both entry points:
// group the records under each selected address, then range-compress each
// address's year map.
func compile(records []domain.ListingRecord, selections []domain.Selection) []domain.AddressHistory {
	grouped := group(records, selections)

	histories := make([]domain.AddressHistory, 0, len(selections))
	for _, sel := range selections {
		histories = append(histories, domain.AddressHistory{
			Address:   NormalizeAddress(sel.Address),
			Direction: sel.Direction,
			Ranges:    Compress(grouped[MatchKey(sel.Address)]),
		})
	}
	return histories
}
