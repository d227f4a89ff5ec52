package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cdsearch/internal/directory"
	"cdsearch/internal/exporter"
	"cdsearch/internal/ingest"
	"cdsearch/pkg/contracts/domain"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
)

// Dataset is one parsed and normalized directory export held in memory.
// Records and Addresses are immutable after creation; compile calls only
// read them.
type Dataset struct {
	ID         string              `json:"id"`
	Filename   string              `json:"filename"`
	RowCount   int                 `json:"row_count"`
	Dropped    directory.DropStats `json:"dropped"`
	Addresses  []string            `json:"addresses"`
	UploadedAt time.Time           `json:"uploaded_at"`

	records []domain.ListingRecord
}

// Records returns the normalized listing records of the dataset.
func (d *Dataset) Records() []domain.ListingRecord {
	return d.records
}

// AnalysisService owns uploaded datasets and runs the occupant history
// pipeline against them. Datasets live only in memory; the store is bounded
// and evicts the oldest dataset when full.
type AnalysisService struct {
	mu          sync.RWMutex
	datasets    map[string]*Dataset
	order       []string
	maxDatasets int

	reports *exporter.ReportWriter
	logger  *slog.Logger
}

// NewAnalysisService creates an analysis service holding at most maxDatasets
// parsed uploads.
func NewAnalysisService(maxDatasets int, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDatasets < 1 {
		maxDatasets = 1
	}
	return &AnalysisService{
		datasets:    make(map[string]*Dataset),
		maxDatasets: maxDatasets,
		reports:     exporter.NewReportWriter(logger),
		logger:      logger.With(slog.String("component", "analysis_service")),
	}
}

// CreateDataset ingests and normalizes an uploaded file and stores the
// result under a fresh dataset ID. Schema problems (*directory.SchemaError)
// and unsupported formats propagate to the caller; malformed rows are
// dropped and counted, never fatal.
func (s *AnalysisService) CreateDataset(ctx context.Context, filename string, r io.Reader) (*Dataset, error) {
	table, err := ingest.Read(r, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	records, stats, err := directory.Normalize(table)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		ID:         uuid.New().String(),
		Filename:   filename,
		RowCount:   len(records),
		Dropped:    stats,
		Addresses:  directory.Inventory(records),
		UploadedAt: time.Now().UTC(),
		records:    records,
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	for len(s.order) > s.maxDatasets {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.datasets, evicted)
		s.logger.InfoContext(ctx, "Evicted oldest dataset",
			slog.String("dataset_id", evicted))
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Dataset created",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", filename),
		slog.Int("records", ds.RowCount),
		slog.Int("dropped_rows", stats.Total()),
		slog.Int("addresses", len(ds.Addresses)))

	return ds, nil
}

// Dataset returns a stored dataset by ID.
func (s *AnalysisService) Dataset(ctx context.Context, id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// CompileSubject compiles occupant histories for the given subject addresses
// against a stored dataset.
func (s *AnalysisService) CompileSubject(ctx context.Context, id string, addresses []string) ([]domain.AddressHistory, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}

	histories := directory.CompileSubject(ds.records, addresses)
	s.logger.InfoContext(ctx, "Compiled subject histories",
		slog.String("dataset_id", id),
		slog.Int("addresses", len(addresses)))
	return histories, nil
}

// CompileAdjoining compiles occupant histories for adjoining property
// selections, carrying each selection's direction tag into the output.
func (s *AnalysisService) CompileAdjoining(ctx context.Context, id string, selections []domain.Selection) ([]domain.AddressHistory, error) {
	ds, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}

	histories := directory.CompileAdjoining(ds.records, selections)
	s.logger.InfoContext(ctx, "Compiled adjoining histories",
		slog.String("dataset_id", id),
		slog.Int("addresses", len(selections)))
	return histories, nil
}

// SubjectReport compiles subject histories and renders the report workbook.
func (s *AnalysisService) SubjectReport(ctx context.Context, id string, addresses []string) ([]byte, error) {
	histories, err := s.CompileSubject(ctx, id, addresses)
	if err != nil {
		return nil, err
	}
	return s.reports.SubjectReport(histories)
}

// AdjoiningReport compiles adjoining histories and renders the report
// workbook.
func (s *AnalysisService) AdjoiningReport(ctx context.Context, id string, selections []domain.Selection) ([]byte, error) {
	histories, err := s.CompileAdjoining(ctx, id, selections)
	if err != nil {
		return nil, err
	}
	return s.reports.AdjoiningReport(histories)
}
