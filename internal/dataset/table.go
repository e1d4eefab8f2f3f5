package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateColumn is the reserved name of the timestamp column.
const DateColumn = "date"

// DateLayout is the canonical timestamp encoding.
const DateLayout = "2006-01-02 15:04:05"

// ErrUnknownColumn is returned when a caller names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// Row is one timestamped observation.
type Row struct {
	Date    time.Time
	HasDate bool
	Values  []Cell
}

// Table is an ordered set of rows sharing a column list. Columns excludes
// the date column.
type Table struct {
	Columns []string
	Rows    []Row

	index map[string]int
}

// NewTable creates an empty table for the given sensor columns.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	t := &Table{Columns: cols}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name within Columns.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether name is a sensor column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Append adds a row. The row must carry one value per column.
func (t *Table) Append(r Row) error {
	if len(r.Values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(r.Values), len(t.Columns))
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Column returns a copy of the named column's cells in row order.
func (t *Table) Column(name string) ([]Cell, error) {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	out := make([]Cell, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Rows[r].Values[i]
	}
	return out, nil
}

// Project builds a new table restricted to cols, in the order given.
// Rows are copied; t is left untouched.
func (t *Table) Project(cols []string) (*Table, error) {
	idx := make([]int, len(cols))
	var missing []string
	for k, c := range cols {
		i, ok := t.ColumnIndex(c)
		if !ok {
			missing = append(missing, c)
			continue
		}
		idx[k] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, strings.Join(missing, ", "))
	}

	out := NewTable(cols)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		vals := make([]Cell, len(idx))
		for k, i := range idx {
			vals[k] = r.Values[i]
		}
		out.Rows = append(out.Rows, Row{Date: r.Date, HasDate: r.HasDate, Values: vals})
	}
	return out, nil
}

// Filter returns a new table with the rows for which keep is true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := NewTable(t.Columns)
	for _, r := range t.Rows {
		if keep(r) {
			vals := make([]Cell, len(r.Values))
			copy(vals, r.Values)
			out.Rows = append(out.Rows, Row{Date: r.Date, HasDate: r.HasDate, Values: vals})
		}
	}
	return out
}

// DateBounds returns the earliest and latest non-null dates.
func (t *Table) DateBounds() (min, max time.Time, ok bool) {
	for _, r := range t.Rows {
		if !r.HasDate {
			continue
		}
		if !ok {
			min, max, ok = r.Date, r.Date, true
			continue
		}
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, ok
}

// NullCounts returns, per column, how many rows are null.
func (t *Table) NullCounts() map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		n := 0
		for _, r := range t.Rows {
			if !r.Values[i].Valid {
				n++
			}
		}
		counts[c] = n
	}
	return counts
}

// SortByDate orders rows ascending by date. The sort is stable so duplicate
// timestamps keep their input order; rows without a date go last.
func SortByDate(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.HasDate && b.HasDate:
			return a.Date.Before(b.Date)
		case a.HasDate:
			return true
		default:
			return false
		}
	})
}

// FormatDate renders a row date in the canonical layout, empty when absent.
func FormatDate(r Row) string {
	if !r.HasDate {
		return ""
	}
	return r.Date.Format(DateLayout)
}
