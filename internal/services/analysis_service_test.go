package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdsearch/pkg/contracts/domain"
)

const sampleCSV = `ADDRESS,YEAR,LISTING
12 Oak St,1990,Acme Hardware
12 Oak St,1990,Blue Diner
,1991,Acme Hardware
14 Oak St,1991,Corner Pharmacy
`

func newTestService(t *testing.T, maxDatasets int) *AnalysisService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewAnalysisService(maxDatasets, logger)
}

func TestCreateDataset(t *testing.T) {
	svc := newTestService(t, 4)

	ds, err := svc.CreateDataset(context.Background(), "listings.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, "listings.csv", ds.Filename)
	assert.Equal(t, 4, ds.RowCount)
	assert.Equal(t, 0, ds.Dropped.Total())
	assert.Equal(t, []string{"12 Oak St", "14 Oak St"}, ds.Addresses)

	got, err := svc.Dataset(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)
}

func TestCreateDatasetCountsDroppedRows(t *testing.T) {
	svc := newTestService(t, 4)

	csv := "ADDRESS,YEAR,LISTING\n,1990,Orphan Listing\n12 Oak St,bad,Acme\n12 Oak St,1990,\n12 Oak St,1990,Acme\n"
	ds, err := svc.CreateDataset(context.Background(), "messy.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.RowCount)
	assert.Equal(t, 1, ds.Dropped.NoAddress)
	assert.Equal(t, 1, ds.Dropped.BadYear)
	assert.Equal(t, 1, ds.Dropped.EmptyOccupant)
}

func TestCreateDatasetSchemaError(t *testing.T) {
	svc := newTestService(t, 4)

	_, err := svc.CreateDataset(context.Background(), "bad.csv", strings.NewReader("FOO,BAR\n1,2\n"))
	require.Error(t, err)
}

func TestDatasetNotFound(t *testing.T) {
	svc := newTestService(t, 4)

	_, err := svc.Dataset(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDatasetEviction(t *testing.T) {
	svc := newTestService(t, 2)

	var ids []string
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("file%d.csv", i)
		ds, err := svc.CreateDataset(context.Background(), name, strings.NewReader(sampleCSV))
		require.NoError(t, err)
		ids = append(ids, ds.ID)
	}

	_, err := svc.Dataset(context.Background(), ids[0])
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	for _, id := range ids[1:] {
		_, err := svc.Dataset(context.Background(), id)
		assert.NoError(t, err)
	}
}

func TestCompileSubject(t *testing.T) {
	svc := newTestService(t, 4)

	ds, err := svc.CreateDataset(context.Background(), "listings.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	histories, err := svc.CompileSubject(context.Background(), ds.ID, []string{"12 oak st"})
	require.NoError(t, err)
	require.Len(t, histories, 1)

	assert.Equal(t, "12 oak st", histories[0].Address)
	require.Len(t, histories[0].Ranges, 2)
	assert.Equal(t, []string{"Acme Hardware", "Blue Diner"}, histories[0].Ranges[0].Occupants)
	assert.Equal(t, []string{"Acme Hardware"}, histories[0].Ranges[1].Occupants)
}

func TestCompileAdjoining(t *testing.T) {
	svc := newTestService(t, 4)

	ds, err := svc.CreateDataset(context.Background(), "listings.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	histories, err := svc.CompileAdjoining(context.Background(), ds.ID, []domain.Selection{
		{Address: "14 Oak St", Direction: domain.DirectionNorth},
		{Address: "99 Elm St", Direction: domain.DirectionSouth},
	})
	require.NoError(t, err)
	require.Len(t, histories, 2)

	assert.Equal(t, domain.DirectionNorth, histories[0].Direction)
	require.Len(t, histories[0].Ranges, 1)
	assert.Equal(t, "1991", histories[0].Ranges[0].Label())

	assert.Equal(t, domain.DirectionSouth, histories[1].Direction)
	assert.Empty(t, histories[1].Ranges)
}

func TestSubjectReportBytes(t *testing.T) {
	svc := newTestService(t, 4)

	ds, err := svc.CreateDataset(context.Background(), "listings.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	data, err := svc.SubjectReport(context.Background(), ds.ID, []string{"12 Oak St"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestHealthServiceStatus(t *testing.T) {
	svc := NewHealthService("1.2.3")

	status := svc.Status(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}
