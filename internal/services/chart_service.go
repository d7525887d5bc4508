package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"finviz/internal/cache"
	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/log"
	"finviz/internal/store"

	"golang.org/x/sync/singleflight"
)

// ChartService serves aggregation results for arbitrary filters.
// Results are cached per dataset, normalized filter and UTC day, and
// concurrent misses for the same key share one computation.
type ChartService struct {
	reader store.DatasetReader
	cache  *cache.LRUCache[engine.Result]
	group  singleflight.Group
	logger *log.Logger
	now    func() time.Time

	computations atomic.Uint64
}

func NewChartService(reader store.DatasetReader, c *cache.LRUCache[engine.Result], logger *log.Logger) *ChartService {
	return &ChartService{
		reader: reader,
		cache:  c,
		logger: logger.WithComponent(log.ComponentEngine),
		now:    time.Now,
	}
}

// Charts aggregates the current dataset under state. With no dataset the
// result is empty, not an error.
func (s *ChartService) Charts(ctx context.Context, state core.FilterState) (engine.Result, error) {
	now := s.now()
	ds, err := s.reader.Latest(ctx)
	if errors.Is(err, store.ErrNoDataset) {
		return engine.Aggregate(nil, state, now), nil
	}
	if err != nil {
		return engine.Result{}, fmt.Errorf("load dataset: %w", err)
	}

	state = engine.Normalize(ds.Records, state)
	key := cacheKey(ds.ID, state, now)
	if res, ok := s.cache.Get(key); ok {
		return res, nil
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
		start := time.Now()
		res := engine.Aggregate(ds.Records, state, now)
		s.computations.Add(1)
		s.cache.Set(key, res)
		fields := log.NewFields().
			WithDataset(ds.ID, ds.Name, ds.Len()).
			WithFilter(state).
			WithOperation(log.OpAggregate)
		fields[log.FieldDuration] = time.Since(start).Milliseconds()
		s.logger.DebugContext(ctx, "Charts computed", fields.ToSlice()...)
		return res, nil
	})
	return v.(engine.Result), nil
}

// Invalidate drops every cached result and returns how many were dropped.
func (s *ChartService) Invalidate() int {
	return s.cache.Purge()
}

// Computations returns how many aggregations actually ran.
func (s *ChartService) Computations() uint64 { return s.computations.Load() }

// CacheStats exposes the underlying cache counters.
func (s *ChartService) CacheStats() cache.Stats { return s.cache.Stats() }

func cacheKey(datasetID string, state core.FilterState, now time.Time) string {
	return datasetID + "|" + string(state.TimeRange) + "|" + state.Category + "|" + now.UTC().Format(core.DateLayout)
}
