// Package dataset holds the in-memory shape of the canonical pump table.
//
// A Table is a date-indexed time series: every Row carries an optional
// timestamp and one nullable Cell per sensor column. Tables produced by the
// loader are treated as immutable; filters and projections always build new
// tables and never touch the source rows.
//
// The canonical on-disk form is a UTF-8 CSV whose first column is "date",
// written as "2006-01-02 15:04:05", followed by the sensor columns. Missing
// values are empty fields.
package dataset
