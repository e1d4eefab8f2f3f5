package http

import (
	"context"

	"github.com/fran-as/millDischargeDashboard/internal/services"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts/domain"
)

// DashboardServiceInterface defines the view operations the handlers need
type DashboardServiceInterface interface {
	Groups() []string
	Columns(group string) (*domain.PumpGroup, error)
	TableInfo(ctx context.Context) (*domain.TableInfo, error)
	Digest(ctx context.Context) (string, error)
	Series(ctx context.Context, group string, w services.Window, columns []string) (*domain.SeriesView, error)
	Scatter(ctx context.Context, group string, w services.Window, x, y string) (*domain.ScatterView, error)
	Histogram(ctx context.Context, group string, w services.Window, column string, bins int) (*domain.HistogramView, error)
}
