package selector

import (
	"errors"
	"fmt"
	"time"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

var (
	// ErrInvalidDateRange is returned when start falls after end.
	ErrInvalidDateRange = errors.New("start date is after end date")
	// ErrUnknownColumn aliases the dataset error so callers can match on
	// either package.
	ErrUnknownColumn = dataset.ErrUnknownColumn
	// ErrEmptyTable means there are no dated rows to derive a range from.
	ErrEmptyTable = errors.New("table has no dated rows")
)

// DateRange is an inclusive interval of timestamps.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejects ranges whose start is after their end.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			r.Start.Format(dataset.DateLayout), r.End.Format(dataset.DateLayout))
	}
	return nil
}

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FullRange spans the earliest to the latest dated row of t.
func FullRange(t *dataset.Table) (DateRange, error) {
	min, max, ok := t.DateBounds()
	if !ok {
		return DateRange{}, ErrEmptyTable
	}
	return DateRange{Start: min, End: max}, nil
}

// FilterByDateRange returns the rows of t dated within [start, end],
// restricted to cols. Undated rows never match. An empty result is not an
// error. t is not modified.
func FilterByDateRange(t *dataset.Table, cols []string, start, end time.Time) (*dataset.Table, error) {
	rng := DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	sub, err := t.Project(cols)
	if err != nil {
		return nil, err
	}
	return sub.Filter(func(r dataset.Row) bool {
		return r.HasDate && rng.Contains(r.Date)
	}), nil
}

// CoerceForPlotting re-coerces every cell to a finite number or null and
// drops columns that are entirely null. The input is left unchanged.
func CoerceForPlotting(sub *dataset.Table) *dataset.Table {
	var keep []int
	for i := range sub.Columns {
		for _, r := range sub.Rows {
			if plottable(r.Values[i]) {
				keep = append(keep, i)
				break
			}
		}
	}

	cols := make([]string, len(keep))
	for k, i := range keep {
		cols[k] = sub.Columns[i]
	}

	out := dataset.NewTable(cols)
	out.Rows = make([]dataset.Row, len(sub.Rows))
	for n, r := range sub.Rows {
		vals := make([]dataset.Cell, len(keep))
		for k, i := range keep {
			if c := r.Values[i]; plottable(c) {
				vals[k] = dataset.Float(c.Value)
			}
		}
		out.Rows[n] = dataset.Row{Date: r.Date, HasDate: r.HasDate, Values: vals}
	}
	return out
}

func plottable(c dataset.Cell) bool {
	return c.Valid && dataset.Float(c.Value).Valid
}
