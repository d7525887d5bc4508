package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/log"
	"finviz/internal/store"
)

// ViewState is the projection currently shown to the user.
type ViewState struct {
	engine.Result
	Requested  core.FilterState `json:"requested"`
	DatasetID  string           `json:"dataset_id"`
	Generation uint64           `json:"generation"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// View holds the displayed projection. It is recomputed when a dataset is
// stored and when the filter changes; each trigger takes a generation and a
// finished recompute is published only while its generation is the newest,
// so a slow stale run never overwrites a newer one.
type View struct {
	reader store.DatasetReader
	logger *log.Logger
	now    func() time.Time

	mu         sync.RWMutex
	generation uint64
	requested  core.FilterState
	displayed  ViewState
}

func NewView(reader store.DatasetReader, logger *log.Logger) *View {
	v := &View{
		reader:    reader,
		logger:    logger.WithComponent(log.ComponentView),
		now:       time.Now,
		requested: core.DefaultFilter(),
	}
	v.displayed = ViewState{
		Result:    engine.Aggregate(nil, v.requested, v.now()),
		Requested: v.requested,
		UpdatedAt: v.now(),
	}
	return v
}

// Current returns the displayed state.
func (v *View) Current() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.displayed
}

// SetFilter records a new selection and recomputes the view for it.
func (v *View) SetFilter(ctx context.Context, f core.FilterState) (ViewState, error) {
	return v.recompute(ctx, &f)
}

// Refresh recomputes the view with the current selection, after a dataset change.
func (v *View) Refresh(ctx context.Context) (ViewState, error) {
	return v.recompute(ctx, nil)
}

// OnDatasetStored adapts Refresh to a DatasetService listener.
func (v *View) OnDatasetStored(ctx context.Context, ds core.Dataset) {
	if _, err := v.Refresh(ctx); err != nil {
		v.logger.ErrorContext(ctx, "View refresh failed", log.FieldDatasetID, ds.ID, log.FieldError, err)
	}
}

func (v *View) recompute(ctx context.Context, f *core.FilterState) (ViewState, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	if f != nil {
		v.requested = *f
	}
	requested := v.requested
	v.mu.Unlock()

	ds, err := v.reader.Latest(ctx)
	if err != nil && !errors.Is(err, store.ErrNoDataset) {
		return v.Current(), fmt.Errorf("load dataset: %w", err)
	}
	res := engine.Aggregate(ds.Records, requested, v.now())

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.DebugContext(ctx, "Discarding stale view computation",
			log.FieldGeneration, gen,
			"latest_generation", v.generation)
		return v.displayed, nil
	}
	v.displayed = ViewState{
		Result:     res,
		Requested:  requested,
		DatasetID:  ds.ID,
		Generation: gen,
		UpdatedAt:  v.now(),
	}
	return v.displayed, nil
}

// Generation returns the number of triggers seen so far.
func (v *View) Generation() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.generation
}
