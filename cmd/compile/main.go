// Command compile runs the occupant history pipeline against a directory
// export file without the HTTP server. It reads a CSV or XLSX export,
// compiles histories for the requested addresses, and writes the report
// workbook or a flat CSV.
//
// Usage:
//
//	compile -in listings.xlsx -subject "12 Oak St" -subject "14 Oak St" -out subject.xlsx
//	compile -in listings.xlsx -adjoining "10 Oak St:north" -adjoining "16 Oak St:south" -out adjoining.xlsx
//	compile -in listings.csv -subject "12 Oak St" -format csv -out histories.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cdsearch/internal/config"
	"cdsearch/internal/directory"
	"cdsearch/internal/exporter"
	"cdsearch/internal/infrastructure"
	"cdsearch/internal/ingest"
	"cdsearch/pkg/contracts/domain"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var subjects stringList
	var adjoining stringList

	in := flag.String("in", "", "input directory export (.csv, .xlsx, .xlsm)")
	out := flag.String("out", "", "output file path")
	format := flag.String("format", "xlsx", "output format: xlsx | csv")
	listAddresses := flag.Bool("addresses", false, "list distinct addresses in the input and exit")
	flag.Var(&subjects, "subject", "subject property address (repeatable)")
	flag.Var(&adjoining, "adjoining", "adjoining property as address or address:direction (repeatable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{Level: "info", Format: "text", Output: "console"},
		}
	}
	cfg.Logging.Output = "console"
	cfg.Logging.Format = "text"
	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	if err := run(logger, *in, *out, *format, *listAddresses, subjects, adjoining); err != nil {
		logger.Error("Compilation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, in, out, format string, listAddresses bool, subjects, adjoining stringList) error {
	if in == "" {
		return fmt.Errorf("missing required -in flag")
	}

	table, err := ingest.ReadFile(in)
	if err != nil {
		return err
	}

	records, stats, err := directory.Normalize(table)
	if err != nil {
		return err
	}
	if stats.Total() > 0 {
		logger.Warn("Dropped malformed rows",
			slog.Int("no_address", stats.NoAddress),
			slog.Int("bad_year", stats.BadYear),
			slog.Int("empty_occupant", stats.EmptyOccupant))
	}
	logger.Info("Input parsed",
		slog.String("file", in),
		slog.Int("records", len(records)))

	if listAddresses {
		for _, addr := range directory.Inventory(records) {
			fmt.Println(addr)
		}
		return nil
	}

	if len(subjects) == 0 && len(adjoining) == 0 {
		return fmt.Errorf("no addresses selected: pass -subject or -adjoining")
	}
	if len(subjects) > 0 && len(adjoining) > 0 {
		return fmt.Errorf("pass either -subject or -adjoining, not both")
	}
	if out == "" {
		return fmt.Errorf("missing required -out flag")
	}

	var histories []domain.AddressHistory
	if len(subjects) > 0 {
		histories = directory.CompileSubject(records, subjects)
	} else {
		selections, err := parseSelections(adjoining)
		if err != nil {
			return err
		}
		histories = directory.CompileAdjoining(records, selections)
	}

	switch format {
	case "csv":
		writer := exporter.NewCSVWriter(logger)
		if err := writer.WriteHistories(out, histories, exporter.WriteOptions{}); err != nil {
			return err
		}
	case "xlsx":
		writer := exporter.NewReportWriter(logger)
		var data []byte
		if len(subjects) > 0 {
			data, err = writer.SubjectReport(histories)
		} else {
			data, err = writer.AdjoiningReport(histories)
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
	default:
		return fmt.Errorf("unknown format %q: want xlsx or csv", format)
	}

	logger.Info("Report written",
		slog.String("file", out),
		slog.Int("addresses", len(histories)))
	return nil
}

// parseSelections splits "address" or "address:direction" arguments. The
// direction follows the last colon so addresses containing colons stay
// intact.
func parseSelections(args []string) ([]domain.Selection, error) {
	selections := make([]domain.Selection, 0, len(args))
	for _, arg := range args {
		addr := arg
		dir := domain.DirectionNone

		if i := strings.LastIndex(arg, ":"); i >= 0 {
			parsed, err := domain.ParseDirection(arg[i+1:])
			if err != nil {
				return nil, fmt.Errorf("bad adjoining argument %q: %w", arg, err)
			}
			addr = arg[:i]
			dir = parsed
		}

		if strings.TrimSpace(addr) == "" {
			return nil, fmt.Errorf("bad adjoining argument %q: empty address", arg)
		}
		selections = append(selections, domain.Selection{Address: addr, Direction: dir})
	}
	return selections, nil
}
