package selector

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheLoadsOnce(t *testing.T) {
	path := writeFixture(t, 5)
	cache := NewCache(quietLogger())

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 16)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := cache.Load(context.Background(), path)
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}
	wg.Wait()

	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
	stats := cache.Stats()
	assert.EqualValues(t, 1, stats.Loads)
	assert.Equal(t, 1, stats.Entries)

	assert.Equal(t, 5, snaps[0].Table.Len())
	assert.Len(t, snaps[0].Table.Columns, 40)
	assert.Len(t, snaps[0].Digest, 64)
}

func TestCacheIgnoresLaterFileChanges(t *testing.T) {
	path := writeFixture(t, 5)
	cache := NewCache(quietLogger())

	first, err := cache.Table(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("date,x\n"), 0644))
	second, err := cache.Table(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCacheFailuresAreNotRemembered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_pumps.csv")
	cache := NewCache(quietLogger())

	_, err := cache.Load(context.Background(), path)
	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("date,a\n2024-01-01,1\n"), 0644))
	snap, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Table.Len())
	assert.EqualValues(t, 1, cache.Stats().Failures)
}

func TestCacheRejectsMalformedFile(t *testing.T) {
	tests := map[string]string{
		"no date column": "a,b\n1,2\n",
		"ragged row":     "date,a\n2024-01-01,1,2\n",
		"empty":          "",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.csv")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := NewCache(quietLogger()).Load(context.Background(), path)
			var dle *DataLoadError
			assert.ErrorAs(t, err, &dle)
		})
	}

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0644))
	_, err := NewCache(quietLogger()).Load(context.Background(), path)
	assert.ErrorIs(t, err, dataset.ErrMissingDateColumn)
}

func TestCacheRespectsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCache(quietLogger()).Load(ctx, writeFixture(t, 1))
	// either the load won the race or the caller saw its own cancellation
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
