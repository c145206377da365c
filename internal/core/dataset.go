package core

// dataset.go owns the process-lifetime dataset cache.
//
// The cache starts empty and is filled by the first successful load. Concurrent
// first requests share a single load through a singleflight group; a failed
// load is not cached, so the next request retries. Once stored, a Dataset is
// never modified.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/operadoras/internal/logging"
)

// Dataset is a fully loaded, normalized source file.
type Dataset struct {
	ID        string
	Source    string
	Encoding  string
	Columns   []string
	Kinds     []ColumnKind
	Records   []Record
	Attempts  []Attempt
	LoadedAt  time.Time
	SizeBytes int64

	body []byte
}

// JSON returns the encoded record array. The slice is shared; do not modify it.
func (d *Dataset) JSON() []byte {
	return d.body
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// DatasetStatus describes the cache state for the status endpoint.
type DatasetStatus struct {
	Loaded    bool              `json:"loaded"`
	Source    string            `json:"source"`
	LoadID    string            `json:"load_id,omitempty"`
	Encoding  string            `json:"encoding,omitempty"`
	Records   int               `json:"records"`
	Columns   map[string]string `json:"columns,omitempty"`
	Attempts  []Attempt         `json:"attempts,omitempty"`
	LoadedAt  *time.Time        `json:"loaded_at,omitempty"`
	SizeBytes int64             `json:"size_bytes,omitempty"`
}

// Cache loads the dataset at most once and serves it for the life of the process.
type Cache struct {
	path    string
	loader  *Loader
	metrics *Metrics
	now     func() time.Time

	current atomic.Pointer[Dataset]
	group   singleflight.Group
}

// NewCache creates an empty cache for the file at path. metrics may be nil.
func NewCache(path string, loader *Loader, metrics *Metrics) *Cache {
	return &Cache{
		path:    path,
		loader:  loader,
		metrics: metrics,
		now:     time.Now,
	}
}

// Path returns the configured source path.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached dataset, loading it on the first call.
// A cache hit performs no I/O. If ctx ends while a load is in flight, Get
// returns ctx.Err() and the load finishes for the other waiters.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	if ds := c.current.Load(); ds != nil {
		c.metrics.observeLookup(true)
		return ds, nil
	}
	c.metrics.observeLookup(false)

	return c.do(ctx, "get", func(loadCtx context.Context) (*Dataset, error) {
		if ds := c.current.Load(); ds != nil {
			return ds, nil
		}
		return c.load(loadCtx)
	})
}

// Reload loads the source again and replaces the cached dataset on success.
// On failure the previous dataset, if any, is kept.
func (c *Cache) Reload(ctx context.Context) (*Dataset, error) {
	return c.do(ctx, "reload", c.load)
}

// Peek returns the cached dataset without loading. Returns nil on a cold cache.
func (c *Cache) Peek() *Dataset {
	return c.current.Load()
}

// Status reports the cache state without triggering a load.
func (c *Cache) Status() DatasetStatus {
	ds := c.current.Load()
	if ds == nil {
		return DatasetStatus{Source: c.path}
	}

	cols := make(map[string]string, len(ds.Columns))
	for i, col := range ds.Columns {
		cols[col] = ds.Kinds[i].String()
	}
	loadedAt := ds.LoadedAt

	return DatasetStatus{
		Loaded:    true,
		Source:    ds.Source,
		LoadID:    ds.ID,
		Encoding:  ds.Encoding,
		Records:   ds.Len(),
		Columns:   cols,
		Attempts:  ds.Attempts,
		LoadedAt:  &loadedAt,
		SizeBytes: ds.SizeBytes,
	}
}

// do runs fn once per key across concurrent callers. The shared work is
// detached from the caller's cancellation.
func (c *Cache) do(ctx context.Context, key string, fn func(context.Context) (*Dataset, error)) (*Dataset, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load builds a Dataset from the source and stores it on success.
func (c *Cache) load(ctx context.Context) (*Dataset, error) {
	logger := logging.WithFields(ctx, "path", c.path)
	start := c.now()

	ds, err := c.build(ctx)
	elapsed := c.now().Sub(start)
	if err != nil {
		c.metrics.observeLoad(err, elapsed, 0)
		logger.Error("dataset load failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	c.current.Store(ds)
	c.metrics.observeLoad(nil, elapsed, ds.Len())
	logger.Info("dataset loaded",
		"load_id", ds.ID,
		"encoding", ds.Encoding,
		"records", ds.Len(),
		"size", humanize.Bytes(uint64(ds.SizeBytes)),
		"duration_ms", elapsed.Milliseconds(),
	)
	return ds, nil
}

func (c *Cache) build(ctx context.Context) (*Dataset, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, c.path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, c.path)
	}

	res, err := c.loader.Load(ctx, c.path)
	if err != nil {
		return nil, err
	}

	records := res.Table.Records()
	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	return &Dataset{
		ID:        uuid.NewString(),
		Source:    c.path,
		Encoding:  res.Encoding,
		Columns:   res.Table.Columns,
		Kinds:     res.Table.Kinds,
		Records:   records,
		Attempts:  res.Attempts,
		LoadedAt:  c.now(),
		SizeBytes: res.SizeBytes,
		body:      body,
	}, nil
}
