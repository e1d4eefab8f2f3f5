package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts/domain"
)

// DashboardService derives views from the cached canonical table.
type DashboardService struct {
	cache   *selector.Cache
	path    string
	metrics *infrastructure.DashboardMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewDashboardService serves views of the canonical CSV at path.
func NewDashboardService(cache *selector.Cache, path string, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cache:   cache,
		path:    path,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// Path is the canonical CSV this service reads.
func (s *DashboardService) Path() string { return s.path }

// NewSession starts an unloaded selection session over the shared cache.
func (s *DashboardService) NewSession() *selector.Session {
	return selector.NewSession(s.cache, s.path)
}

// Ready loads the table if needed.
func (s *DashboardService) Ready(ctx context.Context) error {
	_, err := s.cache.Load(ctx, s.path)
	return err
}

// CacheStats reports the table cache counters.
func (s *DashboardService) CacheStats() selector.CacheStats {
	return s.cache.Stats()
}

// Groups lists the pump groups in declaration order.
func (s *DashboardService) Groups() []string {
	return selector.Groups()
}

// Columns returns the columns of group.
func (s *DashboardService) Columns(group string) (*domain.PumpGroup, error) {
	cols, err := selector.SelectGroup(group)
	if err != nil {
		return nil, err
	}
	return &domain.PumpGroup{Name: group, Columns: cols}, nil
}

// TableInfo describes the loaded table.
func (s *DashboardService) TableInfo(ctx context.Context) (*domain.TableInfo, error) {
	snap, err := s.cache.Load(ctx, s.path)
	if err != nil {
		return nil, err
	}

	t := snap.Table
	info := &domain.TableInfo{
		Path:       snap.Path,
		Digest:     snap.Digest,
		Size:       snap.Size,
		Rows:       t.Len(),
		Columns:    append([]string(nil), t.Columns...),
		NullCounts: t.NullCounts(),
		LoadedAt:   snap.LoadedAt,
	}
	if min, max, ok := t.DateBounds(); ok {
		info.Start, info.End = &min, &max
	}
	return info, nil
}

// Digest identifies the loaded table's content.
func (s *DashboardService) Digest(ctx context.Context) (string, error) {
	snap, err := s.cache.Load(ctx, s.path)
	if err != nil {
		return "", err
	}
	return snap.Digest, nil
}

// Series returns group's columns, or the given subset, over w.
func (s *DashboardService) Series(ctx context.Context, group string, w Window, columns []string) (view *domain.SeriesView, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.series", trace.WithAttributes(attribute.String("group", group)))
	defer span.End()
	defer func() { s.record(ctx, "series", group, view, err) }()

	cols, err := groupColumns(group, columns)
	if err != nil {
		return nil, err
	}
	t, rng, err := s.window(ctx, w)
	if err != nil {
		return nil, err
	}

	sub, err := selector.FilterByDateRange(t, cols, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	sel := selector.Selection{Group: group, Range: rng, Columns: cols}
	return NewSeriesView(sel, selector.CoerceForPlotting(sub)), nil
}

// Scatter returns the pairwise null-dropped view of x against y.
func (s *DashboardService) Scatter(ctx context.Context, group string, w Window, x, y string) (view *domain.ScatterView, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.scatter", trace.WithAttributes(attribute.String("group", group)))
	defer span.End()
	defer func() { s.record(ctx, "scatter", group, view, err) }()

	cols, err := selector.SelectGroup(group)
	if err != nil {
		return nil, err
	}
	x, y, err = selector.SelectColumnPair(cols, x, y)
	if err != nil {
		return nil, err
	}
	t, rng, err := s.window(ctx, w)
	if err != nil {
		return nil, err
	}

	sub, err := selector.FilterByDateRange(t, []string{x, y}, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	points, err := selector.PairwiseDropNull(sub, x, y)
	if err != nil {
		return nil, err
	}
	sel := selector.Selection{Group: group, Range: rng, X: x, Y: y}
	return NewScatterView(sel, sub, points), nil
}

// Histogram buckets the non-null readings of column over w.
func (s *DashboardService) Histogram(ctx context.Context, group string, w Window, column string, bins int) (view *domain.HistogramView, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.histogram", trace.WithAttributes(attribute.String("group", group)))
	defer span.End()
	defer func() { s.record(ctx, "histogram", group, view, err) }()

	cols, err := groupColumns(group, []string{column})
	if err != nil {
		return nil, err
	}
	t, rng, err := s.window(ctx, w)
	if err != nil {
		return nil, err
	}

	sub, err := selector.FilterByDateRange(t, cols, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	values, err := selector.NonNull(sub, column)
	if err != nil {
		return nil, err
	}

	buckets := selector.Histogram(values, bins)
	view = &domain.HistogramView{
		Group:  group,
		Range:  domain.DateWindow{Start: rng.Start, End: rng.End},
		Column: column,
		Count:  len(values),
		Bins:   make([]domain.HistogramBin, len(buckets)),
		Empty:  len(values) == 0,
	}
	for i, b := range buckets {
		view.Bins[i] = domain.HistogramBin{Lower: b.Lower, Upper: b.Upper, Count: b.Count}
	}
	return view, nil
}

func (s *DashboardService) window(ctx context.Context, w Window) (*dataset.Table, selector.DateRange, error) {
	t, err := s.cache.Table(ctx, s.path)
	if err != nil {
		return nil, selector.DateRange{}, err
	}
	rng, err := w.Resolve(t)
	if err != nil {
		return nil, selector.DateRange{}, err
	}
	return t, rng, nil
}

func (s *DashboardService) record(ctx context.Context, kind, group string, view interface{}, err error) {
	rows := 0
	switch v := view.(type) {
	case *domain.SeriesView:
		if v != nil {
			rows = len(v.Rows)
		}
	case *domain.ScatterView:
		if v != nil {
			rows = len(v.Points)
		}
	case *domain.HistogramView:
		if v != nil {
			rows = v.Count
		}
	}
	s.metrics.RecordView(ctx, kind, group, rows, err)
	if err != nil {
		s.logger.DebugContext(ctx, "view failed",
			slog.String("view", kind),
			slog.String("group", group),
			slog.String("error", err.Error()))
	}
}

// groupColumns returns the group's columns, or subset after checking each
// belongs to the group.
func groupColumns(group string, subset []string) ([]string, error) {
	cols, err := selector.SelectGroup(group)
	if err != nil {
		return nil, err
	}
	if len(subset) == 0 {
		return cols, nil
	}

	members := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		members[c] = struct{}{}
	}
	for _, c := range subset {
		if _, ok := members[c]; ok {
			continue
		}
		if owner, ok := selector.GroupOf(c); ok {
			return nil, fmt.Errorf("%w: %s belongs to %s, not %s", selector.ErrUnknownColumn, c, owner, group)
		}
		return nil, fmt.Errorf("%w: %s is not in %s", selector.ErrUnknownColumn, c, group)
	}
	return append([]string(nil), subset...), nil
}

// NewSeriesView converts a plotted sub-table into its response model.
func NewSeriesView(sel selector.Selection, t *dataset.Table) *domain.SeriesView {
	view := &domain.SeriesView{
		Group:   sel.Group,
		Range:   domain.DateWindow{Start: sel.Range.Start, End: sel.Range.End},
		Columns: append([]string{}, t.Columns...),
		Rows:    make([]domain.SeriesRow, 0, t.Len()),
	}
	for _, r := range t.Rows {
		values := make([]*float64, len(r.Values))
		for i, c := range r.Values {
			if c.Valid {
				v := c.Value
				values[i] = &v
			}
		}
		view.Rows = append(view.Rows, domain.SeriesRow{Date: r.Date, Values: values})
	}
	view.Empty = len(view.Rows) == 0 || len(view.Columns) == 0
	return view
}

// NewScatterView converts paired points into their response model. sub is
// the date-filtered table the points were taken from.
func NewScatterView(sel selector.Selection, sub *dataset.Table, points []selector.Point) *domain.ScatterView {
	view := &domain.ScatterView{
		Group:   sel.Group,
		Range:   domain.DateWindow{Start: sel.Range.Start, End: sel.Range.End},
		X:       sel.X,
		Y:       sel.Y,
		Points:  make([]domain.ScatterPoint, len(points)),
		Dropped: sub.Len() - len(points),
		Empty:   len(points) == 0,
	}
	for i, p := range points {
		view.Points[i] = domain.ScatterPoint{Date: p.Date, X: p.X, Y: p.Y}
	}
	return view
}
