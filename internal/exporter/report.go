// Package exporter renders compiled address histories into deliverable
// artifacts: the styled report workbook that gets pasted into assessment
// reports, and a flat CSV for downstream tooling.
package exporter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"cdsearch/pkg/contracts/domain"
)

// Report table header text. Subject and adjoining tables share structure;
// only the direction column differs.
const (
	headerYears            = "Year(s)"
	headerSubjectOccupants = "Subject Property Address(es) — Occupant Listed"
	headerDirection        = "Direction"
	headerAdjoiningAddress = "Adjoining Property Addresses"
	headerAdjoiningListed  = "Occupant Listed (Year)"

	noResults = "No results"

	// Light green header fill, matching the report template.
	headerFillColor = "D9EAD3"
)

// ReportWriter builds the report workbook for compiled histories.
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates a report writer.
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{logger: logger.With(slog.String("component", "report_writer"))}
}

// SubjectReport renders subject property histories as a two-column grid
// table: one row per occupant range, the range label in the first column and
// "<address> — <occupants>" in the second. An address with no ranges
// contributes a single "No results" row so it stays visible in the report.
func (w *ReportWriter) SubjectReport(histories []domain.AddressHistory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Subject Properties"
	f.SetSheetName(f.GetSheetName(0), sheet)

	rows := [][]interface{}{{headerYears, headerSubjectOccupants}}
	for _, h := range histories {
		if len(h.Ranges) == 0 {
			rows = append(rows, []interface{}{"", fmt.Sprintf("%s — %s", h.Address, noResults)})
			continue
		}
		for _, r := range h.Ranges {
			rows = append(rows, []interface{}{r.Label(), fmt.Sprintf("%s — %s", h.Address, r.OccupantList())})
		}
	}

	if err := w.writeTable(f, sheet, rows, []float64{14, 72}); err != nil {
		return nil, err
	}

	w.logger.Info("Subject report rendered",
		slog.Int("addresses", len(histories)),
		slog.Int("rows", len(rows)-1))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// AdjoiningReport renders adjoining property histories as a three-column
// grid table: direction, address, and one line per occupant range in the
// form "<occupants> (<years>)".
func (w *ReportWriter) AdjoiningReport(histories []domain.AddressHistory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Adjoining Properties"
	f.SetSheetName(f.GetSheetName(0), sheet)

	rows := [][]interface{}{{headerDirection, headerAdjoiningAddress, headerAdjoiningListed}}
	for _, h := range histories {
		var lines []string
		for _, r := range h.Ranges {
			lines = append(lines, fmt.Sprintf("%s (%s)", r.OccupantList(), r.Label()))
		}
		occupants := noResults
		if len(lines) > 0 {
			occupants = strings.Join(lines, "\n")
		}
		rows = append(rows, []interface{}{string(h.Direction), h.Address, occupants})
	}

	if err := w.writeTable(f, sheet, rows, []float64{12, 34, 60}); err != nil {
		return nil, err
	}

	w.logger.Info("Adjoining report rendered", slog.Int("addresses", len(histories)))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTable writes rows starting at A1, applies grid borders everywhere and
// the bold green header style to row 1, and sets column widths.
func (w *ReportWriter) writeTable(f *excelize.File, sheet string, rows [][]interface{}, widths []float64) error {
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	borders := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	gridStyle, err := f.NewStyle(&excelize.Style{
		Border:    borders,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create grid style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Border: borders,
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	cols := len(rows[0])
	lastCell, err := excelize.CoordinatesToCellName(cols, len(rows))
	if err != nil {
		return fmt.Errorf("failed to compute table extent: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, gridStyle); err != nil {
		return fmt.Errorf("failed to apply grid style: %w", err)
	}
	headerEnd, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("failed to compute header extent: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", headerEnd, headerStyle); err != nil {
		return fmt.Errorf("failed to apply header style: %w", err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to compute column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
