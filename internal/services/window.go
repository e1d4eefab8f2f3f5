package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
)

// Window is a requested date range. Nil bounds default to the table's
// first and last timestamps.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// ParseWindow parses optional start and end values. An end given as a bare
// date covers that whole day.
func ParseWindow(start, end string) (Window, error) {
	var w Window
	if strings.TrimSpace(start) != "" {
		t, ok := dataset.ParseTimestamp(start)
		if !ok {
			return Window{}, fmt.Errorf("unparseable start %q", start)
		}
		w.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, ok := dataset.ParseTimestamp(end)
		if !ok {
			return Window{}, fmt.Errorf("unparseable end %q", end)
		}
		if !strings.Contains(end, ":") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		w.End = &t
	}
	return w, nil
}

// Resolve fills missing bounds from t and validates the result. On a table
// without dated rows nothing can match, so a missing bound copies the given
// one instead of the zero time.
func (w Window) Resolve(t *dataset.Table) (selector.DateRange, error) {
	rng, err := selector.FullRange(t)
	if err != nil {
		switch {
		case w.Start != nil:
			rng = selector.DateRange{Start: *w.Start, End: *w.Start}
		case w.End != nil:
			rng = selector.DateRange{Start: *w.End, End: *w.End}
		}
	}
	if w.Start != nil {
		rng.Start = *w.Start
	}
	if w.End != nil {
		rng.End = *w.End
	}
	if err := rng.Validate(); err != nil {
		return selector.DateRange{}, err
	}
	return rng, nil
}
