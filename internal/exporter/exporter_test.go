package exporter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

func newTestWriter() *Writer {
	return NewWriter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleTable() *dataset.Table {
	tbl := dataset.NewTable([]string{"presionNido1Psi", "velocidadBomba1Rpm"})
	tbl.Rows = []dataset.Row{
		{Date: time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), HasDate: true, Values: []dataset.Cell{dataset.Float(12.5), dataset.Null()}},
		{Date: time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC), HasDate: true, Values: []dataset.Cell{dataset.Float(0.124), dataset.Float(1500)}},
		{Values: []dataset.Cell{dataset.Null(), dataset.Float(-3.001)}},
	}
	return tbl
}

func TestEncodeCanonicalCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCanonicalCSV(&buf, sampleTable()))

	want := "date,presionNido1Psi,velocidadBomba1Rpm\n" +
		"2024-01-01 06:00:00,12.5,\n" +
		"2024-01-02 06:00:00,0.124,1500\n" +
		",,-3.001\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCanonicalCSVCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "processed_pumps.csv")
	require.NoError(t, newTestWriter().WriteCanonicalCSV(sampleTable(), path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestWriteCanonicalCSVIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter()

	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	require.NoError(t, w.WriteCanonicalCSV(sampleTable(), first))
	require.NoError(t, w.WriteCanonicalCSV(sampleTable(), second))
	// overwrite in place must not leave stale bytes behind
	require.NoError(t, w.WriteCanonicalCSV(sampleTable(), second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_pumps.csv")
	original := sampleTable()
	require.NoError(t, newTestWriter().WriteCanonicalCSV(original, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	loaded, err := dataset.ReadCSV(f)
	require.NoError(t, err)

	assert.Equal(t, original.Columns, loaded.Columns)
	require.Len(t, loaded.Rows, len(original.Rows))
	for i := range original.Rows {
		assert.Equal(t, original.Rows[i].HasDate, loaded.Rows[i].HasDate)
		assert.True(t, original.Rows[i].Date.Equal(loaded.Rows[i].Date))
		assert.Equal(t, original.Rows[i].Values, loaded.Rows[i].Values)
	}
}

func TestWriteCanonicalCSVWithBOM(t *testing.T) {
	w := newTestWriter()
	w.ExcelBOM = true

	path := filepath.Join(t.TempDir(), "processed_pumps.csv")
	require.NoError(t, w.WriteCanonicalCSV(sampleTable(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF, 'd', 'a', 't', 'e'}))

	loaded, err := dataset.ReadCSV(bytes.NewReader(raw))
	require.NoError(t, err, "canonical reader skips the BOM")
	assert.Equal(t, sampleTable().Columns, loaded.Columns)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_pumps.parquet")
	require.NoError(t, newTestWriter().WriteParquet(sampleTable(), path))

	rdr, err := file.OpenParquetFile(path, false)
	require.NoError(t, err)
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)

	tbl, err := fr.ReadTable(context.Background())
	require.NoError(t, err)
	defer tbl.Release()

	assert.EqualValues(t, 3, tbl.NumRows())
	require.EqualValues(t, 3, tbl.NumCols())
	assert.Equal(t, "date", tbl.Schema().Field(0).Name)
	assert.Equal(t, "presionNido1Psi", tbl.Schema().Field(1).Name)

	pressure := tbl.Column(1).Data().Chunk(0).(*array.Float64)
	assert.Equal(t, 12.5, pressure.Value(0))
	assert.True(t, pressure.IsNull(2))

	dates := tbl.Column(0).Data().Chunk(0)
	assert.True(t, dates.IsNull(2))
}
