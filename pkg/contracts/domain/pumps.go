// Package domain contains the response models shared by the HTTP API and
// the websocket selection protocol.
package domain

import "time"

// PumpGroup is one named group of sensor columns.
type PumpGroup struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// TableInfo describes the loaded canonical table.
type TableInfo struct {
	Path       string         `json:"path"`
	Digest     string         `json:"digest"`
	Size       int64          `json:"size"`
	Rows       int            `json:"rows"`
	Columns    []string       `json:"columns"`
	Start      *time.Time     `json:"start,omitempty"`
	End        *time.Time     `json:"end,omitempty"`
	NullCounts map[string]int `json:"null_counts"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

// DateWindow is the inclusive range a view was cut to.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SeriesRow is one dated row of a time series view. Missing readings are
// null.
type SeriesRow struct {
	Date   time.Time  `json:"date"`
	Values []*float64 `json:"values"`
}

// SeriesView is a group's columns over a date window.
type SeriesView struct {
	Group   string      `json:"group"`
	Range   DateWindow  `json:"range"`
	Columns []string    `json:"columns"`
	Rows    []SeriesRow `json:"rows"`
	Empty   bool        `json:"empty"`
}

// ScatterPoint is one row where both columns of the pair have a reading.
type ScatterPoint struct {
	Date time.Time `json:"date"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// ScatterView is the pairwise null-dropped view of two columns.
type ScatterView struct {
	Group   string         `json:"group"`
	Range   DateWindow     `json:"range"`
	X       string         `json:"x"`
	Y       string         `json:"y"`
	Points  []ScatterPoint `json:"points"`
	Dropped int            `json:"dropped"`
	Empty   bool           `json:"empty"`
}

// HistogramBin is one bucket of a HistogramView.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// HistogramView is the distribution of one column's readings.
type HistogramView struct {
	Group  string         `json:"group"`
	Range  DateWindow     `json:"range"`
	Column string         `json:"column"`
	Count  int            `json:"count"`
	Bins   []HistogramBin `json:"bins"`
	Empty  bool           `json:"empty"`
}

// SelectionState is what a websocket session currently has picked.
type SelectionState struct {
	Loaded  bool       `json:"loaded"`
	Group   string     `json:"group,omitempty"`
	Range   DateWindow `json:"range"`
	Columns []string   `json:"columns,omitempty"`
	X       string     `json:"x,omitempty"`
	Y       string     `json:"y,omitempty"`
}
