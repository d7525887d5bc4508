package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"finviz/internal/core"
	"finviz/internal/store"

	"github.com/shopspring/decimal"
)

func dataset(id string) core.Dataset {
	return core.Dataset{
		ID:         id,
		Name:       id + ".csv",
		UploadedAt: time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC),
		Records: []core.Record{
			{Date: core.NewDate(2023, 1, 15), Category: "Food", Amount: decimal.RequireFromString("45.99")},
		},
	}
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore()
	if _, err := s.Latest(context.Background()); !errors.Is(err, store.ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset, got %v", err)
	}
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreReplacesOnSave(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.Save(ctx, dataset("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, dataset("b")); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Latest(ctx)
	if err != nil || got.ID != "b" {
		t.Fatalf("expected latest b, got %q (%v)", got.ID, err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("replaced dataset must be gone, got %v", err)
	}
	if got, err := s.Get(ctx, "b"); err != nil || got.Len() != 1 {
		t.Fatalf("get b: %v (len %d)", err, got.Len())
	}
}

func TestStoreCopiesRecords(t *testing.T) {
	s := NewStore()
	ds := dataset("a")
	_ = s.Save(context.Background(), ds)
	ds.Records[0].Category = "mutated"

	got, _ := s.Latest(context.Background())
	if got.Records[0].Category != "Food" {
		t.Fatalf("store must not alias caller slice")
	}
}

func TestDigestLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	d := store.Digest{DatasetID: "a", Records: 1, GrandTotal: decimal.RequireFromString("45.99")}

	if err := s.SaveDigest(ctx, d); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("digest for unknown dataset must fail, got %v", err)
	}
	_ = s.Save(ctx, dataset("a"))
	if err := s.SaveDigest(ctx, d); err != nil {
		t.Fatalf("save digest: %v", err)
	}
	got, err := s.GetDigest(ctx, "a")
	if err != nil || got.Records != 1 {
		t.Fatalf("get digest: %+v, %v", got, err)
	}

	_ = s.Save(ctx, dataset("b"))
	if _, err := s.GetDigest(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("digest of replaced dataset must be dropped, got %v", err)
	}
}
