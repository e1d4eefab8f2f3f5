package selector

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
)

const tracerName = "github.com/fran-as/millDischargeDashboard/internal/selector"

// DataLoadError reports a canonical table that could not be loaded.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load canonical table %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Snapshot is a loaded canonical table plus file metadata.
type Snapshot struct {
	Path     string
	Table    *dataset.Table
	Digest   string // blake2b-256 of the file bytes, hex
	Size     int64
	LoadedAt time.Time
}

// CacheStats reports cache activity.
type CacheStats struct {
	Entries  int   `json:"entries"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Loads    int64 `json:"loads"`
	Failures int64 `json:"failures"`
}

// Cache memoizes canonical tables per path for the life of the process.
// A path is read at most once at a time; concurrent callers for the same
// path share the in-flight load. Failed loads are not remembered.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
	group   singleflight.Group

	hits, misses, loads, failures atomic.Int64

	logger *slog.Logger
	tracer trace.Tracer
}

// NewCache creates an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*Snapshot),
		logger:  infrastructure.WithComponent(logger, "table_cache"),
		tracer:  otel.Tracer(tracerName),
	}
}

// Load returns the snapshot for path, reading the file on first use.
func (c *Cache) Load(ctx context.Context, path string) (*Snapshot, error) {
	key := cacheKey(path)

	c.mu.RLock()
	snap, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return snap, nil
	}
	c.misses.Add(1)

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		snap, err := c.read(loadCtx, key)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = snap
		c.mu.Unlock()
		c.loads.Add(1)
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Table is Load without the metadata.
func (c *Cache) Table(ctx context.Context, path string) (*dataset.Table, error) {
	snap, err := c.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return snap.Table, nil
}

// Stats returns a point-in-time copy of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{
		Entries:  n,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Failures: c.failures.Load(),
	}
}

func (c *Cache) read(ctx context.Context, path string) (*Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, "selector.load_table",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	start := time.Now()
	snap, err := readSnapshot(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "failed to load canonical table",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", snap.Table.Len()))
	c.logger.InfoContext(ctx, "canonical table loaded",
		slog.String("path", path),
		slog.Int("rows", snap.Table.Len()),
		slog.Int("columns", len(snap.Table.Columns)),
		slog.String("digest", snap.Digest),
		slog.Duration("duration", time.Since(start)))
	return snap, nil
}

func readSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	table, err := dataset.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	sum := blake2b.Sum256(data)
	return &Snapshot{
		Path:     path,
		Table:    table,
		Digest:   hex.EncodeToString(sum[:]),
		Size:     int64(len(data)),
		LoadedAt: time.Now(),
	}, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
