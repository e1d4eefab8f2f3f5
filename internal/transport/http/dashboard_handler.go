package http

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/crypto/blake2b"

	apierrors "github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/middleware"
	"github.com/fran-as/millDischargeDashboard/internal/services"
	api "github.com/fran-as/millDischargeDashboard/pkg/contracts/api/v1"
)

// DashboardHandler serves the pump views with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/table", h.GetTable)
	r.Route("/pumps", func(r chi.Router) {
		r.Get("/", h.GetGroups)
		r.Route("/{pump}", func(r chi.Router) {
			r.Use(h.PumpCtx)
			r.Get("/columns", h.GetColumns)
			r.Get("/series", h.GetSeries)
			r.Get("/scatter", h.GetScatter)
			r.Get("/histogram", h.GetHistogram)
		})
	})

	return r
}

// PumpCtx rejects unknown pump groups before any table access
func (h *DashboardHandler) PumpCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.service.Columns(chi.URLParam(r, "pump")); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetGroups handles GET /api/pumps
func (h *DashboardHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Success(api.GroupsResponse{Groups: h.service.Groups()}))
}

// GetColumns handles GET /api/pumps/{pump}/columns
func (h *DashboardHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.Columns(chi.URLParam(r, "pump"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(group))
}

// GetTable handles GET /api/table
func (h *DashboardHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.TableInfo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if h.notModified(w, r, info.Digest) {
		return
	}
	render.JSON(w, r, api.Success(info))
}

// GetSeries handles GET /api/pumps/{pump}/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.SeriesQuery{
		DateRangeQuery: dateRangeQuery(q),
		Columns:        splitList(q["columns"]),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window, err := parseWindow(query.DateRangeQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if h.checkNotModified(w, r) {
		return
	}

	view, err := h.service.Series(r.Context(), chi.URLParam(r, "pump"), window, query.Columns)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(view))
}

// GetScatter handles GET /api/pumps/{pump}/scatter
func (h *DashboardHandler) GetScatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.ScatterQuery{
		DateRangeQuery: dateRangeQuery(q),
		X:              strings.TrimSpace(q.Get("x")),
		Y:              strings.TrimSpace(q.Get("y")),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window, err := parseWindow(query.DateRangeQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if h.checkNotModified(w, r) {
		return
	}

	view, err := h.service.Scatter(r.Context(), chi.URLParam(r, "pump"), window, query.X, query.Y)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(view))
}

// GetHistogram handles GET /api/pumps/{pump}/histogram
func (h *DashboardHandler) GetHistogram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.HistogramQuery{
		DateRangeQuery: dateRangeQuery(q),
		Column:         strings.TrimSpace(q.Get("column")),
	}
	if raw := q.Get("bins"); raw != "" {
		bins, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("bins", err))
			return
		}
		query.Bins = bins
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window, err := parseWindow(query.DateRangeQuery)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if h.checkNotModified(w, r) {
		return
	}

	view, err := h.service.Histogram(r.Context(), chi.URLParam(r, "pump"), window, query.Column, query.Bins)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(view))
}

// checkNotModified derives the view's ETag from the table digest and the
// request URL. A load failure is left for the view call to report.
func (h *DashboardHandler) checkNotModified(w http.ResponseWriter, r *http.Request) bool {
	digest, err := h.service.Digest(r.Context())
	if err != nil {
		return false
	}
	sum := blake2b.Sum256([]byte(digest + "|" + r.URL.Path + "?" + r.URL.RawQuery))
	return h.notModified(w, r, hex.EncodeToString(sum[:16]))
}

func (h *DashboardHandler) notModified(w http.ResponseWriter, r *http.Request, tag string) bool {
	etag := fmt.Sprintf("%q", tag)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && (match == etag || match == "*") {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func dateRangeQuery(q url.Values) api.DateRangeQuery {
	return api.DateRangeQuery{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}
}

func parseWindow(q api.DateRangeQuery) (services.Window, error) {
	w, err := services.ParseWindow(q.Start, q.End)
	if err != nil {
		return services.Window{}, apierrors.InvalidParameter("start/end", err)
	}
	return w, nil
}

// splitList accepts both columns=a,b and repeated columns=a&columns=b.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
