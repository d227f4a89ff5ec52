package http

import (
	"context"
	"io"

	"cdsearch/internal/services"
	"cdsearch/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the contract the analysis handler needs
// from the service layer. Kept small so handler tests can substitute a mock.
type AnalysisServiceInterface interface {
	CreateDataset(ctx context.Context, filename string, r io.Reader) (*services.Dataset, error)
	Dataset(ctx context.Context, id string) (*services.Dataset, error)
	CompileSubject(ctx context.Context, id string, addresses []string) ([]domain.AddressHistory, error)
	CompileAdjoining(ctx context.Context, id string, selections []domain.Selection) ([]domain.AddressHistory, error)
	SubjectReport(ctx context.Context, id string, addresses []string) ([]byte, error)
	AdjoiningReport(ctx context.Context, id string, selections []domain.Selection) ([]byte, error)
}
