package selector

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

var (
	// ErrSameColumn is returned when x and y name the same column.
	ErrSameColumn = errors.New("x and y must be different columns")
	// ErrTooFewColumns means a pair cannot be formed.
	ErrTooFewColumns = errors.New("at least two columns are required")
)

const (
	flowMarker     = "caudal"
	pressureMarker = "presion"
)

// SelectColumnPair resolves the (x, y) pair for a comparison view.
//
// Empty arguments are defaulted: x to the first flow column, y to the first
// pressure column, falling back to the first and second available columns.
// Explicit names must be members of cols and distinct.
func SelectColumnPair(cols []string, x, y string) (string, string, error) {
	if len(cols) < 2 {
		return "", "", ErrTooFewColumns
	}
	if x != "" && !contains(cols, x) {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownColumn, x)
	}
	if y != "" && !contains(cols, y) {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownColumn, y)
	}
	if x != "" && x == y {
		return "", "", fmt.Errorf("%w: %s", ErrSameColumn, x)
	}

	if x == "" {
		x = firstMatching(cols, flowMarker, y)
	}
	if y == "" {
		y = firstMatching(cols, pressureMarker, x)
	}
	return x, y, nil
}

// firstMatching returns the first column containing marker other than
// exclude, else the first column other than exclude.
func firstMatching(cols []string, marker, exclude string) string {
	for _, c := range cols {
		if c != exclude && strings.Contains(strings.ToLower(c), marker) {
			return c
		}
	}
	for _, c := range cols {
		if c != exclude {
			return c
		}
	}
	return ""
}

func contains(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

// Point is one row of a pairwise view.
type Point struct {
	Date time.Time `json:"date"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// PairwiseDropNull returns the rows of sub where both x and y are present,
// in row order.
func PairwiseDropNull(sub *dataset.Table, x, y string) ([]Point, error) {
	xi, ok := sub.ColumnIndex(x)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, x)
	}
	yi, ok := sub.ColumnIndex(y)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, y)
	}

	points := make([]Point, 0, len(sub.Rows))
	for _, r := range sub.Rows {
		xv, yv := r.Values[xi], r.Values[yi]
		if !xv.Valid || !yv.Valid {
			continue
		}
		points = append(points, Point{Date: r.Date, X: xv.Value, Y: yv.Value})
	}
	return points, nil
}

// NonNull returns the present values of column in row order.
func NonNull(sub *dataset.Table, column string) ([]float64, error) {
	cells, err := sub.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.Valid {
			out = append(out, c.Value)
		}
	}
	return out, nil
}

// Bin is one bucket of a histogram. Lower is inclusive; Upper is exclusive
// except for the last bin.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DefaultBins is used when the caller does not ask for a bin count.
const DefaultBins = 20

// Histogram buckets values into n equal-width bins over their range.
// A constant series, or one whose range does not fit in a float64,
// collapses into a single bin.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if n <= 0 {
		n = DefaultBins
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(n)
	if lo == hi || width == 0 || math.IsInf(width, 0) {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		switch {
		case i >= n:
			i = n - 1
		case i < 0:
			i = 0
		}
		bins[i].Count++
	}
	return bins
}
