package normalize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

type gridSource struct {
	rows [][]string
	err  error
}

func (g gridSource) Name() string { return "grid" }

func (g gridSource) Rows(context.Context) ([][]string, error) { return g.rows, g.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractorRun(t *testing.T) {
	src := gridSource{rows: [][]string{
		{"Date", "caudalDeAlimentacionNido1_m3xh", "presionNido1_psi", ""},
		{"2024-01-03", "101.23456", "NULL"},
		{"2024-01-01", "99.9995", "12", "ignored"},
		{"", "", "", ""},
		{"not a date", "5", "nan"},
		{"2024-01-02", "abc", "None"},
		{},
		{" ", ""},
	}}

	table, report, err := NewExtractor(quietLogger()).Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []string{"caudalDeAlimentacionNido1M3PerH", "presionNido1Psi"}, table.Columns)
	require.Len(t, table.Rows, 5)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), table.Rows[0].Date)
	assert.Equal(t, dataset.Float(100), table.Rows[0].Values[0])
	assert.Equal(t, dataset.Float(12), table.Rows[0].Values[1])

	assert.Equal(t, dataset.Null(), table.Rows[1].Values[0])
	assert.Equal(t, dataset.Float(101.235), table.Rows[2].Values[0])

	assert.False(t, table.Rows[3].HasDate, "undated rows sort last")
	assert.False(t, table.Rows[4].HasDate)
	assert.Equal(t, []dataset.Cell{dataset.Null(), dataset.Null()}, table.Rows[3].Values, "interior blank row is kept")
	assert.Equal(t, dataset.Float(5), table.Rows[4].Values[0])

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 3, report.Columns)
	assert.Equal(t, 2, report.SkippedRows, "trailing blank rows are trimmed")
	assert.Equal(t, 2, report.UndatedRows)
	assert.Equal(t, []int{3}, report.Dropped)
	assert.Equal(t, []string{"date", "caudalDeAlimentacionNido1M3PerH", "presionNido1Psi"}, report.ColumnNames)
	assert.Equal(t, map[string]int{"caudalDeAlimentacionNido1M3PerH": 2, "presionNido1Psi": 4}, report.NullCounts)
	assert.Equal(t, []string{"caudalDeAlimentacionNido1M3PerH", "presionNido1Psi"}, report.ColumnsWithNulls())
	assert.Contains(t, report.Summary(), "presionNido1Psi: 4 missing")
}

func TestExtractorFailures(t *testing.T) {
	boom := errors.New("disk on fire")

	tests := []struct {
		name  string
		src   Source
		check func(t *testing.T, err error)
	}{
		{
			name: "source error",
			src:  gridSource{err: boom},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name: "empty grid",
			src:  gridSource{},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptySheet)
			},
		},
		{
			name: "missing date column",
			src:  gridSource{rows: [][]string{{"a_psi"}, {"1"}}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, dataset.ErrMissingDateColumn)
			},
		},
		{
			name: "second date header",
			src:  gridSource{rows: [][]string{{"Date", "p_psi", "DATE"}, {"2024-01-01", "1", "2024-01-02"}}},
			check: func(t *testing.T, err error) {
				var ce *CollisionError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, "date", ce.Canonical)
				assert.Equal(t, []string{"Date", "DATE"}, ce.Raw)
			},
		},
		{
			name: "collision",
			src:  gridSource{rows: [][]string{{"date", "p_psi", "P_PSI"}, {"2024-01-01", "1", "2"}}},
			check: func(t *testing.T, err error) {
				var ce *CollisionError
				assert.ErrorAs(t, err, &ce)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewExtractor(quietLogger()).Run(context.Background(), tt.src)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestExtractorHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := gridSource{rows: [][]string{{"date", "a_psi"}, {"2024-01-01", "1"}}}
	_, _, err := NewExtractor(quietLogger()).Run(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcelSource(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"date", "velocidadBomba1_rpm", "potenciaBomba1_kw"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 1500.12345, "NULL"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), 1499, 310.5}))
	path := filepath.Join(dir, "dataPumps.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, _, err := NewExtractor(quietLogger()).Run(context.Background(), ExcelSource{Path: path})
	require.NoError(t, err)

	assert.Equal(t, []string{"velocidadBomba1Rpm", "potenciaBomba1Kw"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), table.Rows[0].Date)
	assert.Equal(t, dataset.Float(310.5), table.Rows[0].Values[1])
	assert.Equal(t, dataset.Float(1500.123), table.Rows[1].Values[0])
	assert.Equal(t, dataset.Null(), table.Rows[1].Values[1])
}

func TestExcelSourceMissingFile(t *testing.T) {
	_, err := ExcelSource{Path: filepath.Join(t.TempDir(), "nope.xlsx")}.Rows(context.Background())
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "nope.xlsx")
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,cwNido2_prctj\n2024-01-01,55.5555\n2024-01-02\n"), 0644))

	table, _, err := NewExtractor(quietLogger()).Run(context.Background(), CSVSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"cwNido2Percent"}, table.Columns)
	assert.Equal(t, dataset.Float(55.556), table.Rows[0].Values[0])
	assert.Equal(t, dataset.Null(), table.Rows[1].Values[0])
}

func TestSheetValue(t *testing.T) {
	assert.Equal(t, "", sheetValue(nil))
	assert.Equal(t, "x", sheetValue("x"))
	assert.Equal(t, "45292.5", sheetValue(45292.5))
	assert.Equal(t, "1", sheetValue(true))
}
