// Package exporter writes the canonical pump table to disk.
//
// The primary artefact is a plain UTF-8 CSV (no BOM) with the date column
// first. Output is deterministic: the same table always yields the same
// bytes, so repeated extraction runs are idempotent.
//
// A Parquet copy with the same columns can be written next to the CSV for
// tools that prefer a typed, columnar file.
//
// Example usage:
//
//	w := exporter.NewWriter(logger)
//	if err := w.WriteCanonicalCSV(table, "data/processed_pumps.csv"); err != nil {
//		return err
//	}
package exporter
