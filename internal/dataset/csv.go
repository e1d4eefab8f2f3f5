package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrMissingDateColumn means the header has no "date" column.
	ErrMissingDateColumn = errors.New("missing date column")
	// ErrEmptyInput means the source had no header row at all.
	ErrEmptyInput = errors.New("empty input")
	// ErrDuplicateColumn means two header cells share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006",
}

// ParseTimestamp parses s with the known textual layouts. Values without a
// zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsNullToken(s) || strings.EqualFold(s, "NaT") {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ReadCSV parses a canonical table. The date column may sit anywhere in the
// header; the resulting rows are sorted by date. Unparseable cells become
// null, but a ragged row aborts the read.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	dateIdx := -1
	var columns []string
	var positions []int
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if strings.EqualFold(name, DateColumn) && dateIdx < 0 {
			dateIdx = i
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
		positions = append(positions, i)
	}
	if dateIdx < 0 {
		return nil, ErrMissingDateColumn
	}

	table := NewTable(columns)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := Row{Values: make([]Cell, len(positions))}
		row.Date, row.HasDate = ParseTimestamp(record[dateIdx])
		for k, p := range positions {
			row.Values[k] = ParseCell(record[p])
		}
		table.Rows = append(table.Rows, row)
	}

	SortByDate(table.Rows)
	return table, nil
}
