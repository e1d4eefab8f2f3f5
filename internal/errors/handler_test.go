package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"data load", &selector.DataLoadError{Path: "x.csv", Err: fmt.Errorf("boom")}, http.StatusServiceUnavailable, TypeDataUnavailable},
		{"unknown group", fmt.Errorf("lookup: %w", selector.ErrUnknownGroup), http.StatusNotFound, TypeUnknownGroup},
		{"unknown column", fmt.Errorf("%w: foo", selector.ErrUnknownColumn), http.StatusBadRequest, TypeUnknownColumn},
		{"invalid range", selector.ErrInvalidDateRange, http.StatusBadRequest, TypeInvalidRange},
		{"same column", selector.ErrSameColumn, http.StatusBadRequest, TypeSameColumn},
		{"too few columns", selector.ErrTooFewColumns, http.StatusUnprocessableEntity, TypeTooFewColumns},
		{"api error", InvalidParameter("bins", fmt.Errorf("too many")), http.StatusBadRequest, TypeValidation},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"unexpected", fmt.Errorf("disk on fire"), http.StatusInternalServerError, TypeInternal},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/pumps/pump1/scatter", nil)
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/pumps/pump1/scatter", problem.Instance)
		})
	}
}

func TestHandleErrorWritesProblem(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/pumps/pump9/columns", nil)
	r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-xyz"))
	w := httptest.NewRecorder()

	h.HandleError(w, r, selector.ErrUnknownGroup)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeUnknownGroup, body["type"])
	assert.Equal(t, "trace-xyz", body["trace_id"])
	assert.EqualValues(t, http.StatusNotFound, body["status"])
}

func TestHandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler().HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAPIErrorDetailsExtension(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/table", nil)
	problem := h.ErrorToProblem(InvalidParameter("start", fmt.Errorf("bad date")), r)

	assert.Equal(t, "INVALID_PARAMETER", problem.Extensions["error_code"])
	assert.Equal(t, ValidationError{Field: "start", Message: "bad date"}, problem.Extensions["details"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/pumps", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "DELETE")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := newTestHandler()
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicky).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pumps", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TypeInternal)
	assert.NotContains(t, w.Body.String(), "kaboom")
}
