package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type datasetRow struct {
	ID         string
	Name       string
	UploadedAt string
	RowCount   int64
}

type recordRow struct {
	Date     sql.NullString
	Category string
	Amount   string
}

const deleteDatasets = `DELETE FROM datasets`

const deleteRecords = `DELETE FROM records`

const deleteDigests = `DELETE FROM dataset_digests`

func (q *Queries) ClearAll(ctx context.Context) error {
	for _, stmt := range []string{deleteDigests, deleteRecords, deleteDatasets} {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const insertDataset = `INSERT INTO datasets (id, name, uploaded_at, row_count) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertDataset(ctx context.Context, arg datasetRow) error {
	_, err := q.db.ExecContext(ctx, insertDataset, arg.ID, arg.Name, arg.UploadedAt, arg.RowCount)
	return err
}

const insertRecord = `INSERT INTO records (dataset_id, position, date, category, amount) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertRecord(ctx context.Context, datasetID string, position int, r recordRow) error {
	_, err := q.db.ExecContext(ctx, insertRecord, datasetID, position, r.Date, r.Category, r.Amount)
	return err
}

const getLatestDataset = `SELECT id, name, uploaded_at, row_count FROM datasets ORDER BY uploaded_at DESC LIMIT 1`

func (q *Queries) GetLatestDataset(ctx context.Context) (datasetRow, error) {
	var d datasetRow
	err := q.db.QueryRowContext(ctx, getLatestDataset).Scan(&d.ID, &d.Name, &d.UploadedAt, &d.RowCount)
	return d, err
}

const getDataset = `SELECT id, name, uploaded_at, row_count FROM datasets WHERE id = ?`

func (q *Queries) GetDataset(ctx context.Context, id string) (datasetRow, error) {
	var d datasetRow
	err := q.db.QueryRowContext(ctx, getDataset, id).Scan(&d.ID, &d.Name, &d.UploadedAt, &d.RowCount)
	return d, err
}

const listRecords = `SELECT date, category, amount FROM records WHERE dataset_id = ? ORDER BY position`

func (q *Queries) ListRecords(ctx context.Context, datasetID string) ([]recordRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecords, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []recordRow
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.Date, &r.Category, &r.Amount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type digestRow struct {
	DatasetID     string
	RecordCount   int64
	CategoryCount int64
	MonthCount    int64
	UndatedCount  int64
	GrandTotal    string
	TopCategory   string
	ComputedAt    string
}

const upsertDigest = `INSERT INTO dataset_digests
    (dataset_id, record_count, category_count, month_count, undated_count, grand_total, top_category, computed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(dataset_id) DO UPDATE SET
    record_count = excluded.record_count,
    category_count = excluded.category_count,
    month_count = excluded.month_count,
    undated_count = excluded.undated_count,
    grand_total = excluded.grand_total,
    top_category = excluded.top_category,
    computed_at = excluded.computed_at`

func (q *Queries) UpsertDigest(ctx context.Context, arg digestRow) error {
	_, err := q.db.ExecContext(ctx, upsertDigest,
		arg.DatasetID, arg.RecordCount, arg.CategoryCount, arg.MonthCount,
		arg.UndatedCount, arg.GrandTotal, arg.TopCategory, arg.ComputedAt)
	return err
}

const getDigest = `SELECT dataset_id, record_count, category_count, month_count, undated_count, grand_total, top_category, computed_at
FROM dataset_digests WHERE dataset_id = ?`

func (q *Queries) GetDigest(ctx context.Context, datasetID string) (digestRow, error) {
	var d digestRow
	err := q.db.QueryRowContext(ctx, getDigest, datasetID).Scan(
		&d.DatasetID, &d.RecordCount, &d.CategoryCount, &d.MonthCount,
		&d.UndatedCount, &d.GrandTotal, &d.TopCategory, &d.ComputedAt)
	return d, err
}
