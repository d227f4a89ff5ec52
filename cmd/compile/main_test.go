package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdsearch/pkg/contracts/domain"
)

func TestParseSelections(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []domain.Selection
		wantErr bool
	}{
		{
			name: "address with direction",
			args: []string{"10 Oak St:north"},
			want: []domain.Selection{{Address: "10 Oak St", Direction: domain.DirectionNorth}},
		},
		{
			name: "address without direction",
			args: []string{"10 Oak St"},
			want: []domain.Selection{{Address: "10 Oak St", Direction: domain.DirectionNone}},
		},
		{
			name: "single letter direction",
			args: []string{"10 Oak St:w"},
			want: []domain.Selection{{Address: "10 Oak St", Direction: domain.DirectionWest}},
		},
		{
			name:    "unknown direction",
			args:    []string{"10 Oak St:up"},
			wantErr: true,
		},
		{
			name:    "empty address",
			args:    []string{":north"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelections(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunWritesCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "listings.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("ADDRESS,YEAR,LISTING\n12 Oak St,1990,Acme Hardware\n12 Oak St,1991,Acme Hardware\n"), 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(logger, in, out, "csv", false, stringList{"12 Oak St"}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "12 Oak St")
	assert.Contains(t, string(data), "1990-1991")
}

func TestRunWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "listings.csv")
	out := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(in, []byte("ADDRESS,YEAR,LISTING\n12 Oak St,1990,Acme Hardware\n"), 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(logger, in, out, "xlsx", false, stringList{"12 Oak St"}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestRunFlagValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Error(t, run(logger, "", "out.xlsx", "xlsx", false, stringList{"a"}, nil))
	assert.Error(t, run(logger, "in.csv", "", "xlsx", false, stringList{"a"}, nil))
	assert.Error(t, run(logger, "in.csv", "out.xlsx", "xlsx", false, nil, nil))
	assert.Error(t, run(logger, "in.csv", "out.xlsx", "xlsx", false, stringList{"a"}, stringList{"b"}))
}
