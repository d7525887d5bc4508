// Package store defines the ports for dataset persistence.
package store

import (
	"context"
	"errors"
	"time"

	"finviz/internal/core"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoDataset is returned when nothing has been uploaded yet.
	ErrNoDataset = errors.New("no dataset uploaded")
	// ErrNotFound is returned for a dataset id that is not (or no longer) stored.
	ErrNotFound = errors.New("dataset not found")
)

// DatasetWriter replaces the current dataset.
type DatasetWriter interface {
	Save(ctx context.Context, ds core.Dataset) error
}

// DatasetReader reads the current dataset.
type DatasetReader interface {
	Latest(ctx context.Context) (core.Dataset, error)
	Get(ctx context.Context, id string) (core.Dataset, error)
}

// Store is a complete dataset backend.
type Store interface {
	DatasetWriter
	DatasetReader
}

// Digest is the all-time summary computed for a dataset after upload.
type Digest struct {
	DatasetID   string
	Records     int
	Categories  int
	Months      int
	Undated     int
	GrandTotal  decimal.Decimal
	TopCategory string
	ComputedAt  time.Time
}

// DigestStore persists dataset digests.
type DigestStore interface {
	SaveDigest(ctx context.Context, d Digest) error
	GetDigest(ctx context.Context, datasetID string) (Digest, error)
}
