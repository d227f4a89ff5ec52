package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cdsearch/pkg/contracts/domain"
)

// CSVWriter flattens compiled histories into CSV for spreadsheet review or
// downstream tooling.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// csvHeaders is the fixed column layout of the flattened history export.
var csvHeaders = []string{"Address", "Direction", "Year(s)", "Occupant(s)"}

// WriteHistories writes one row per occupant range to path, creating parent
// directories as needed. Addresses with no ranges get a single row with an
// empty year column so they remain visible in the output.
func (w *CSVWriter) WriteHistories(path string, histories []domain.AddressHistory, options WriteOptions) error {
	records := HistoryRecords(histories)

	w.logger.Info("Writing history CSV",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// HistoryRecords flattens histories into CSV records in the csvHeaders
// layout.
func HistoryRecords(histories []domain.AddressHistory) [][]string {
	var records [][]string
	for _, h := range histories {
		if len(h.Ranges) == 0 {
			records = append(records, []string{h.Address, string(h.Direction), "", noResults})
			continue
		}
		for _, r := range h.Ranges {
			records = append(records, []string{h.Address, string(h.Direction), r.Label(), r.OccupantList()})
		}
	}
	return records
}
