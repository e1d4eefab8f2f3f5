package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fran-as/millDischargeDashboard/internal/selector"
)

type mockTableLoader struct {
	mock.Mock
}

func (m *mockTableLoader) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixedSessions int

func (f fixedSessions) SessionCount() int { return int(f) }

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		dataDir    func(t *testing.T) string
		loadErr    error
		wantStatus string
	}{
		{"ready", func(t *testing.T) string { return t.TempDir() }, nil, "ready"},
		{"table fails", func(t *testing.T) string { return t.TempDir() }, errors.New("no file"), "not_ready"},
		{"data dir missing", func(t *testing.T) string { return "/nonexistent/pumps" }, nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := new(mockTableLoader)
			loader.On("Ready", mock.Anything).Return(tt.loadErr)

			hs := NewHealthService("1.0.0", tt.dataDir(t), loader, fixedSessions(2), discardLogger())
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "2 active sessions", status.Services["websocket"].(ServiceHealth).Message)
			loader.AssertExpectations(t)
		})
	}
}

func TestReadinessReportsCacheStats(t *testing.T) {
	svc := newService(t, writeTable(t))
	hs := NewHealthService("1.0.0", t.TempDir(), svc, nil, discardLogger())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)

	stats, ok := status.Services["table_cache"].(selector.CacheStats)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 1, stats.Loads)

	hs.ReadinessCheck(context.Background())
	assert.EqualValues(t, 1, svc.CacheStats().Loads, "second check is served from the cache")
	assert.Positive(t, svc.CacheStats().Hits)
}

func TestHealthAndLiveness(t *testing.T) {
	hs := NewHealthService("1.0.0", t.TempDir(), nil, nil, discardLogger())

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status, "nil loader is never ready")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "v1", v["api_version"])
}
