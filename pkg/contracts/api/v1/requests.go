// Package api contains the query contracts of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

// DateRangeQuery bounds a view. Empty values default to the table's first
// and last timestamps; a date-only end covers that whole day.
type DateRangeQuery struct {
	Start string `json:"start" validate:"omitempty,timestamp"`
	End   string `json:"end" validate:"omitempty,timestamp"`
}

// SeriesQuery selects columns of a group over a date range.
type SeriesQuery struct {
	DateRangeQuery
	Columns []string `json:"columns" validate:"omitempty,max=10,dive,required,column"`
}

// ScatterQuery selects the x/y pair of a group over a date range.
type ScatterQuery struct {
	DateRangeQuery
	X string `json:"x" validate:"omitempty,column"`
	Y string `json:"y" validate:"omitempty,column"`
}

// HistogramQuery selects one column of a group and a bin count.
type HistogramQuery struct {
	DateRangeQuery
	Column string `json:"column" validate:"required,column"`
	Bins   int    `json:"bins" validate:"omitempty,min=1,max=200"`
}
