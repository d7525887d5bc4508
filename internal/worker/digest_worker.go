// Package worker consumes dataset events and computes per-dataset digests.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finviz/internal/amqp"
	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/log"
	"finviz/internal/store"
)

// DigestRepository is the storage the digest worker needs.
type DigestRepository interface {
	store.DatasetReader
	store.DigestStore
}

// DigestWorker summarises every uploaded dataset over its full history.
type DigestWorker struct {
	repo   DigestRepository
	logger *log.Logger
	now    func() time.Time
}

func NewDigestWorker(repo DigestRepository, logger *log.Logger) *DigestWorker {
	return &DigestWorker{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleDatasetUploaded computes and stores the digest of msg's dataset.
// A dataset replaced before the message arrived is skipped, not retried.
func (w *DigestWorker) HandleDatasetUploaded(ctx context.Context, msg *amqp.DatasetUploadedMessage) error {
	ds, err := w.repo.Get(ctx, msg.DatasetID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.InfoContext(ctx, "Dataset already replaced, skipping digest", log.FieldDatasetID, msg.DatasetID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get dataset %s: %w", msg.DatasetID, err)
	}

	d := Digest(ds, w.now())
	if err := w.repo.SaveDigest(ctx, d); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.logger.InfoContext(ctx, "Dataset replaced while digesting, dropping digest", log.FieldDatasetID, ds.ID)
			return nil
		}
		return fmt.Errorf("save digest: %w", err)
	}

	w.logger.InfoContext(ctx, "Dataset digest stored",
		append(log.NewFields().WithDataset(ds.ID, ds.Name, ds.Len()).WithOperation(log.OpDigest).ToSlice(),
			"categories", d.Categories,
			"months", d.Months,
			"undated", d.Undated,
			"grand_total", d.GrandTotal.String(),
			"top_category", d.TopCategory)...)
	return nil
}

// Digest aggregates ds without filters into a store.Digest.
func Digest(ds core.Dataset, now time.Time) store.Digest {
	snap := engine.Aggregate(ds.Records, core.DefaultFilter(), now).Snapshot

	// Ties keep the category seen first.
	top := ""
	best := -1
	for i, c := range snap.Categories {
		if best < 0 || c.Total.GreaterThan(snap.Categories[best].Total) {
			best = i
			top = c.Category
		}
	}
	return store.Digest{
		DatasetID:   ds.ID,
		Records:     snap.Records,
		Categories:  len(snap.Categories),
		Months:      len(snap.Months),
		Undated:     snap.Undated,
		GrandTotal:  snap.GrandTotal(),
		TopCategory: top,
		ComputedAt:  now.UTC(),
	}
}
