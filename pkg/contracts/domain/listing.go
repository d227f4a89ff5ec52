package domain

import (
	"fmt"
	"strings"
)

// ListingRecord is a single normalized city-directory listing: one occupant
// observed at one address in one directory year.
type ListingRecord struct {
	Address  string `json:"address" validate:"required"`
	Year     int    `json:"year" validate:"required,min=1000,max=9999"`
	Occupant string `json:"occupant" validate:"required"`
}

// Direction identifies where an adjoining property sits relative to the
// subject property. The empty value means no direction was recorded.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionNorth Direction = "North"
	DirectionSouth Direction = "South"
	DirectionEast  Direction = "East"
	DirectionWest  Direction = "West"
)

// ParseDirection converts user input into a Direction. Matching is
// case-insensitive; blank input maps to DirectionNone.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DirectionNone, nil
	case "north", "n":
		return DirectionNorth, nil
	case "south", "s":
		return DirectionSouth, nil
	case "east", "e":
		return DirectionEast, nil
	case "west", "w":
		return DirectionWest, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

// Selection names an address of interest for compilation, optionally tagged
// with a compass direction (adjoining properties only). Direction never
// influences grouping or compression.
type Selection struct {
	Address   string    `json:"address" validate:"required"`
	Direction Direction `json:"direction,omitempty" validate:"omitempty,oneof=North South East West"`
}

// OccupantRange is a contiguous span of years during which an address's
// occupant set did not change. StartYear == EndYear for a single-year span.
type OccupantRange struct {
	StartYear int      `json:"start_year"`
	EndYear   int      `json:"end_year"`
	Occupants []string `json:"occupants"`
}

// Label renders the range the way report tables expect it: "1990" for a
// single year, "1990-1993" for a span.
func (r OccupantRange) Label() string {
	if r.StartYear == r.EndYear {
		return fmt.Sprintf("%d", r.StartYear)
	}
	return fmt.Sprintf("%d-%d", r.StartYear, r.EndYear)
}

// OccupantList renders the occupants as a comma-joined string for display.
func (r OccupantRange) OccupantList() string {
	return strings.Join(r.Occupants, ", ")
}

// AddressHistory is the compiled occupant history for one address: the
// ordered, gap-respecting sequence of occupant ranges. Direction is set only
// for adjoining properties.
type AddressHistory struct {
	Address   string          `json:"address"`
	Direction Direction       `json:"direction,omitempty"`
	Ranges    []OccupantRange `json:"ranges"`
}

// Years returns every directory year covered by the history's ranges, in
// ascending order.
func (h AddressHistory) Years() []int {
	var years []int
	for _, r := range h.Ranges {
		for y := r.StartYear; y <= r.EndYear; y++ {
			years = append(years, y)
		}
	}
	return years
}
