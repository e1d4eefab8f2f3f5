// Package normalize cleans the raw pump spreadsheet into the canonical table.
//
// Headers are rewritten to lowerCamelCase with canonical unit suffixes
// ("presionNido1_psi" becomes "presionNido1Psi"), the date column is parsed
// into timestamps, every other cell is coerced to a nullable number rounded
// to three decimals, and rows are sorted by date.
//
// Raw data can come from an xlsx workbook (ExcelSource), a CSV export
// (CSVSource) or a Google spreadsheet (SheetsSource).
package normalize
