package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
)

const tracerName = "github.com/fran-as/millDischargeDashboard/internal/normalize"

// Report summarizes one extraction pass.
type Report struct {
	Source      string         `json:"source"`
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	ColumnNames []string       `json:"column_names"`
	NullCounts  map[string]int `json:"null_counts"`
	UndatedRows int            `json:"undated_rows"`
	SkippedRows int            `json:"skipped_rows"`
	Dropped     []int          `json:"dropped_columns,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

// ColumnsWithNulls lists the columns that have at least one null, sorted.
func (r *Report) ColumnsWithNulls() []string {
	var out []string
	for c, n := range r.NullCounts {
		if n > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Extractor turns a raw spreadsheet grid into the canonical table.
type Extractor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExtractor creates an extractor that logs through logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger: infrastructure.WithComponent(logger, "extractor"),
		tracer: otel.Tracer(tracerName),
	}
}

// Run reads src and produces a cleaned, date-sorted table.
//
// Structural problems (unreadable source, missing date column, two headers
// collapsing onto one name) abort the run. Individual bad cells never do:
// they become null, and a row whose date cannot be read is kept undated.
// Columns with a blank header are dropped. Blank rows inside the data are
// kept as undated all-null rows; only the blank tail of the sheet is trimmed.
func (e *Extractor) Run(ctx context.Context, src Source) (*dataset.Table, *Report, error) {
	ctx, span := e.tracer.Start(ctx, "normalize.extract",
		trace.WithAttributes(attribute.String("source", src.Name())))
	defer span.End()

	start := time.Now()
	table, report, err := e.run(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "extraction failed",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()))
		return nil, nil, err
	}
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("rows", report.Rows),
		attribute.Int("columns", report.Columns))

	e.logger.InfoContext(ctx, "extraction complete",
		slog.String("source", report.Source),
		slog.Int("rows", report.Rows),
		slog.Int("columns", report.Columns),
		slog.Int("undated_rows", report.UndatedRows),
		slog.Int("skipped_rows", report.SkippedRows),
		slog.Duration("duration", report.Duration))
	e.logger.InfoContext(ctx, "normalized columns", slog.Any("columns", report.ColumnNames))
	for _, c := range report.ColumnsWithNulls() {
		e.logger.InfoContext(ctx, "missing values",
			slog.String("column", c),
			slog.Int("count", report.NullCounts[c]))
	}

	return table, report, nil
}

func (e *Extractor) run(ctx context.Context, src Source) (*dataset.Table, *Report, error) {
	grid, err := src.Rows(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(grid) == 0 {
		return nil, nil, &SourceError{Source: src.Name(), Err: ErrEmptySheet}
	}

	header := grid[0]
	canonical := NormalizeColumns(header)

	report := &Report{Source: src.Name()}

	// keep maps canonical output positions to grid positions
	dateIdx := -1
	var keepRaw, keepNames []string
	var keep []int
	for i, name := range canonical {
		switch {
		case name == dataset.DateColumn && dateIdx < 0:
			dateIdx = i
		case name == dataset.DateColumn:
			return nil, nil, &CollisionError{Canonical: dataset.DateColumn, Raw: []string{header[dateIdx], header[i]}}
		case name == "":
			report.Dropped = append(report.Dropped, i)
		default:
			keep = append(keep, i)
			keepNames = append(keepNames, name)
			keepRaw = append(keepRaw, header[i])
		}
	}
	if dateIdx < 0 {
		return nil, nil, &SourceError{Source: src.Name(), Err: dataset.ErrMissingDateColumn}
	}
	if err := DetectCollisions(keepRaw, keepNames); err != nil {
		return nil, nil, err
	}
	for _, i := range report.Dropped {
		e.logger.WarnContext(ctx, "dropping column with blank header", slog.Int("position", i))
	}

	body := grid[1:]
	end := len(body)
	for end > 0 && blankRow(body[end-1]) {
		end--
	}
	report.SkippedRows = len(body) - end
	body = body[:end]

	table := dataset.NewTable(keepNames)
	table.Rows = make([]dataset.Row, 0, len(body))
	for n, raw := range body {
		if n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		row := dataset.Row{Values: make([]dataset.Cell, len(keep))}
		row.Date, row.HasDate = ParseDate(cellAt(raw, dateIdx))
		if !row.HasDate {
			report.UndatedRows++
		}
		for k, i := range keep {
			row.Values[k] = CleanCell(cellAt(raw, i))
		}
		table.Rows = append(table.Rows, row)
	}

	dataset.SortByDate(table.Rows)

	report.Rows = table.Len()
	report.Columns = len(table.Columns) + 1
	report.ColumnNames = append([]string{dataset.DateColumn}, table.Columns...)
	report.NullCounts = table.NullCounts()
	return table, report, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summary renders a human readable digest of the report.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d columns=%d undated=%d skipped=%d\n", r.Rows, r.Columns, r.UndatedRows, r.SkippedRows)
	fmt.Fprintf(&b, "columns: %s\n", strings.Join(r.ColumnNames, ", "))
	for _, c := range r.ColumnsWithNulls() {
		fmt.Fprintf(&b, "  %s: %d missing\n", c, r.NullCounts[c])
	}
	return b.String()
}
