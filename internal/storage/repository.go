// Package storage persists datasets and their digests in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finviz/internal/core"
	"finviz/internal/store"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.Store       = (*SQLiteRepository)(nil)
	_ store.DigestStore = (*SQLiteRepository)(nil)
)

const timeLayout = time.RFC3339Nano

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection, used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save replaces every stored dataset with ds in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, ds core.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	if err := q.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear previous dataset: %w", err)
	}
	if err := q.InsertDataset(ctx, datasetRow{
		ID:         ds.ID,
		Name:       ds.Name,
		UploadedAt: ds.UploadedAt.UTC().Format(timeLayout),
		RowCount:   int64(len(ds.Records)),
	}); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	for i, rec := range ds.Records {
		if err := q.InsertRecord(ctx, ds.ID, i, toRecordRow(rec)); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}

	slog.InfoContext(ctx, "Dataset saved to SQLite",
		"dataset_id", ds.ID,
		"name", ds.Name,
		"rows", len(ds.Records))
	return nil
}

func (r *SQLiteRepository) Latest(ctx context.Context) (core.Dataset, error) {
	row, err := r.queries.GetLatestDataset(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Dataset{}, store.ErrNoDataset
	}
	if err != nil {
		return core.Dataset{}, fmt.Errorf("get latest dataset: %w", err)
	}
	return r.load(ctx, row)
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Dataset, error) {
	row, err := r.queries.GetDataset(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Dataset{}, store.ErrNotFound
	}
	if err != nil {
		return core.Dataset{}, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return r.load(ctx, row)
}

func (r *SQLiteRepository) load(ctx context.Context, row datasetRow) (core.Dataset, error) {
	uploadedAt, err := time.Parse(timeLayout, row.UploadedAt)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("parse uploaded_at of %s: %w", row.ID, err)
	}
	rows, err := r.queries.ListRecords(ctx, row.ID)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list records of %s: %w", row.ID, err)
	}
	records := make([]core.Record, len(rows))
	for i, rr := range rows {
		rec, err := fromRecordRow(rr)
		if err != nil {
			return core.Dataset{}, fmt.Errorf("decode record %d of %s: %w", i, row.ID, err)
		}
		records[i] = rec
	}
	return core.Dataset{
		ID:         row.ID,
		Name:       row.Name,
		UploadedAt: uploadedAt,
		Records:    records,
	}, nil
}

// SaveDigest upserts d. It fails with store.ErrNotFound once the dataset was replaced.
func (r *SQLiteRepository) SaveDigest(ctx context.Context, d store.Digest) error {
	if _, err := r.queries.GetDataset(ctx, d.DatasetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("check dataset %s: %w", d.DatasetID, err)
	}
	err := r.queries.UpsertDigest(ctx, digestRow{
		DatasetID:     d.DatasetID,
		RecordCount:   int64(d.Records),
		CategoryCount: int64(d.Categories),
		MonthCount:    int64(d.Months),
		UndatedCount:  int64(d.Undated),
		GrandTotal:    d.GrandTotal.String(),
		TopCategory:   d.TopCategory,
		ComputedAt:    d.ComputedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetDigest(ctx context.Context, datasetID string) (store.Digest, error) {
	row, err := r.queries.GetDigest(ctx, datasetID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Digest{}, store.ErrNotFound
	}
	if err != nil {
		return store.Digest{}, fmt.Errorf("get digest: %w", err)
	}
	total, err := decimal.NewFromString(row.GrandTotal)
	if err != nil {
		return store.Digest{}, fmt.Errorf("parse grand_total: %w", err)
	}
	computedAt, err := time.Parse(timeLayout, row.ComputedAt)
	if err != nil {
		return store.Digest{}, fmt.Errorf("parse computed_at: %w", err)
	}
	return store.Digest{
		DatasetID:   row.DatasetID,
		Records:     int(row.RecordCount),
		Categories:  int(row.CategoryCount),
		Months:      int(row.MonthCount),
		Undated:     int(row.UndatedCount),
		GrandTotal:  total,
		TopCategory: row.TopCategory,
		ComputedAt:  computedAt,
	}, nil
}

func toRecordRow(rec core.Record) recordRow {
	var date sql.NullString
	if rec.Date != nil {
		date = sql.NullString{String: rec.Date.Format(core.DateLayout), Valid: true}
	}
	return recordRow{Date: date, Category: rec.Category, Amount: rec.Amount.String()}
}

func fromRecordRow(rr recordRow) (core.Record, error) {
	amount, err := decimal.NewFromString(rr.Amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %q: %w", rr.Amount, err)
	}
	rec := core.Record{Category: rr.Category, Amount: amount}
	if rr.Date.Valid {
		t, err := time.Parse(core.DateLayout, rr.Date.String)
		if err != nil {
			return core.Record{}, fmt.Errorf("date %q: %w", rr.Date.String, err)
		}
		rec.Date = &t
	}
	return rec, nil
}
