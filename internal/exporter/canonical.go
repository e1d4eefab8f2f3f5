package exporter

import (
	"io"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

// CanonicalRecords flattens a table into the canonical CSV layout: the date
// column first, then the sensor columns in table order. Nulls are empty.
func CanonicalRecords(table *dataset.Table) (headers []string, records [][]string) {
	headers = make([]string, 0, len(table.Columns)+1)
	headers = append(headers, dataset.DateColumn)
	headers = append(headers, table.Columns...)

	records = make([][]string, len(table.Rows))
	for i, r := range table.Rows {
		rec := make([]string, 0, len(r.Values)+1)
		rec = append(rec, dataset.FormatDate(r))
		for _, c := range r.Values {
			rec = append(rec, c.String())
		}
		records[i] = rec
	}
	return headers, records
}

// WriteCanonicalCSV writes table to path. Identical tables always produce
// identical bytes.
func (w *Writer) WriteCanonicalCSV(table *dataset.Table, path string) error {
	headers, records := CanonicalRecords(table)
	return w.WriteCSV(path, WriteOptions{Headers: headers, Records: records, BOMPrefix: w.ExcelBOM})
}

// EncodeCanonicalCSV writes table to out in canonical form.
func EncodeCanonicalCSV(out io.Writer, table *dataset.Table) error {
	headers, records := CanonicalRecords(table)
	return encodeCSV(out, WriteOptions{Headers: headers, Records: records})
}
