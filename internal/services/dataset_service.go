package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/ingest"
	"finviz/internal/log"
	"finviz/internal/store"

	"github.com/google/uuid"
)

// Publisher announces stored datasets to downstream consumers.
type Publisher interface {
	PublishDatasetUploaded(ctx context.Context, datasetID, name string, rows int) error
}

// RecordSource is a remote table that can be imported as a dataset.
type RecordSource interface {
	Name() string
	FetchRecords(ctx context.Context) ([]core.Record, error)
}

// StoredListener is notified after a dataset replaced the previous one.
type StoredListener func(ctx context.Context, ds core.Dataset)

// DatasetService turns uploads and imports into the current dataset.
type DatasetService struct {
	store     store.Store
	publisher Publisher
	logger    *log.Logger
	slog      *log.StructuredLogger
	now       func() time.Time

	mu        sync.RWMutex
	listeners []StoredListener

	uploads  atomic.Uint64
	rejected atomic.Uint64
}

// NewDatasetService wires st as the dataset backend. publisher may be nil.
func NewDatasetService(st store.Store, publisher Publisher, logger *log.Logger) *DatasetService {
	logger = logger.WithComponent(log.ComponentIngest)
	return &DatasetService{
		store:     st,
		publisher: publisher,
		logger:    logger,
		slog:      log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// OnStored registers l to run after every successful upload or import.
func (s *DatasetService) OnStored(l StoredListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Upload decodes a CSV or XLSX file and makes it the current dataset.
// Decoding failures are returned unchanged in the error chain so callers
// can inspect *ingest.HeaderError and ingest.RowErrors.
func (s *DatasetService) Upload(ctx context.Context, filename string, r io.Reader) (core.Dataset, error) {
	records, err := ingest.ParseFile(filename, r)
	if err != nil {
		s.rejected.Add(1)
		return core.Dataset{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return s.replace(ctx, log.OpUpload, filename, records)
}

// Import fetches src and makes it the current dataset.
func (s *DatasetService) Import(ctx context.Context, src RecordSource) (core.Dataset, error) {
	records, err := src.FetchRecords(ctx)
	if err != nil {
		s.rejected.Add(1)
		return core.Dataset{}, fmt.Errorf("import %s: %w", src.Name(), err)
	}
	return s.replace(ctx, log.OpImport, src.Name(), records)
}

func (s *DatasetService) replace(ctx context.Context, op, name string, records []core.Record) (core.Dataset, error) {
	ds := core.Dataset{
		ID:         uuid.NewString(),
		Name:       name,
		UploadedAt: s.now().UTC(),
		Records:    records,
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return core.Dataset{}, fmt.Errorf("save dataset: %w", err)
	}
	s.uploads.Add(1)
	s.slog.LogDatasetStored(ctx, op, ds.ID, ds.Name, ds.Len())

	if err := s.publish(ctx, ds); err != nil {
		// The dataset is stored; digests are best effort.
		s.slog.LogError(ctx, "Failed to publish dataset message", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithDataset(ds.ID, ds.Name, ds.Len()))
	}

	s.mu.RLock()
	listeners := append([]StoredListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(ctx, ds)
	}
	return ds, nil
}

func (s *DatasetService) publish(ctx context.Context, ds core.Dataset) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping dataset message")
		return nil
	}
	return s.publisher.PublishDatasetUploaded(ctx, ds.ID, ds.Name, ds.Len())
}

// Latest returns the current dataset or store.ErrNoDataset.
func (s *DatasetService) Latest(ctx context.Context) (core.Dataset, error) {
	return s.store.Latest(ctx)
}

// Categories lists the categories of the current dataset in first-occurrence
// order. It is empty when nothing has been uploaded.
func (s *DatasetService) Categories(ctx context.Context) ([]string, error) {
	ds, err := s.store.Latest(ctx)
	if errors.Is(err, store.ErrNoDataset) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return engine.Categories(ds.Records), nil
}

// Uploads returns the number of stored datasets since start.
func (s *DatasetService) Uploads() uint64 { return s.uploads.Load() }

// Rejected returns the number of uploads and imports that failed to decode.
func (s *DatasetService) Rejected() uint64 { return s.rejected.Load() }
