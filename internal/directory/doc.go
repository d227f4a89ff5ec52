// Package directory implements the occupant history compiler for city
// directory listing data. It turns the raw tabular export of a directory
// search (address, year, occupant listing) into one compact history per
// property address: an ordered sequence of year ranges, each covering a
// contiguous run of years that share an identical occupant set.
//
// # Architecture
//
// The compiler is a strictly forward pipeline of three stages:
//
//  1. Normalizer: resolves recognized columns, forward-fills blank address
//     cells, validates years, and drops malformed rows.
//  2. Grouper: partitions normalized records by selected address, then by
//     year, deduplicating occupants within each year.
//  3. Range compressor: walks each address's years in ascending order and
//     merges adjacent years with identical occupant sets into ranges. A gap
//     in the year sequence (a missing directory volume) always terminates a
//     range, even when the occupants match.
//
// # Usage
//
// Compiling subject property histories from an ingested table:
//
//	records, stats, err := directory.Normalize(table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	histories := directory.CompileSubject(records, []string{"123 Main St"})
//
// Adjoining properties carry an optional compass direction through the same
// pipeline:
//
//	histories := directory.CompileAdjoining(records, []domain.Selection{
//	    {Address: "125 Main St", Direction: domain.DirectionNorth},
//	})
//
// # Error Handling
//
// Row-level problems (blank addresses with nothing to inherit, unparseable
// years, empty listings) never abort a run; the affected rows are dropped and
// counted in DropStats. A table that lacks one of the required logical
// columns entirely fails fast with a *SchemaError before any history is
// produced.
//
// The compiler is deterministic: the same table and selection always produce
// byte-identical histories, including occupant ordering within each range.
package directory
