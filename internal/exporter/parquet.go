package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

// ParquetSchema returns the Arrow schema of the canonical table: a nullable
// millisecond UTC timestamp followed by nullable float64 columns.
func ParquetSchema(table *dataset.Table) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(table.Columns)+1)
	fields = append(fields, arrow.Field{
		Name:     dataset.DateColumn,
		Type:     arrow.FixedWidthTypes.Timestamp_ms,
		Nullable: true,
	})
	for _, c := range table.Columns {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

// EncodeParquet writes table to out as a single row group, snappy compressed.
func EncodeParquet(out io.Writer, table *dataset.Table) error {
	schema := ParquetSchema(table)
	pool := memory.NewGoAllocator()

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	dates := builder.Field(0).(*array.TimestampBuilder)
	values := make([]*array.Float64Builder, len(table.Columns))
	for i := range table.Columns {
		values[i] = builder.Field(i + 1).(*array.Float64Builder)
	}

	for _, r := range table.Rows {
		if r.HasDate {
			dates.Append(arrow.Timestamp(r.Date.UnixMilli()))
		} else {
			dates.AppendNull()
		}
		for i, c := range r.Values {
			if c.Valid {
				values[i].Append(c.Value)
			} else {
				values[i].AppendNull()
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(false),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(pool))

	fw, err := pqarrow.NewFileWriter(schema, out, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

// WriteParquet writes table to path, creating parent directories.
func (w *Writer) WriteParquet(table *dataset.Table, path string) error {
	var buf bytes.Buffer
	if err := EncodeParquet(&buf, table); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}

	w.logger.Info("Wrote Parquet file",
		slog.String("file_path", path),
		slog.Int("record_count", table.Len()),
		slog.Int("bytes", buf.Len()))
	return nil
}
