package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
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

// Entry mirrors a row of the entries table. Decimal columns hold their
// exact text form.
type Entry struct {
	ID           int64
	CustomerName string
	DateStart    string
	DateEnd      string
	MorningMound string
	MorningSair  int64
	MorningRate  string
	EveningMound string
	EveningSair  int64
	EveningRate  string
	Rent         string
	Commission   string
	Bandi        string
	PaidAmount   string
	CreatedAt    string
	SyncStatus   string
	SyncedAt     sql.NullString
}

const entryColumns = `id, customer_name, date_start, date_end,
	morning_mound, morning_sair, morning_rate,
	evening_mound, evening_sair, evening_rate,
	rent, commission, bandi, paid_amount,
	created_at, sync_status, synced_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.CustomerName, &e.DateStart, &e.DateEnd,
		&e.MorningMound, &e.MorningSair, &e.MorningRate,
		&e.EveningMound, &e.EveningSair, &e.EveningRate,
		&e.Rent, &e.Commission, &e.Bandi, &e.PaidAmount,
		&e.CreatedAt, &e.SyncStatus, &e.SyncedAt,
	)
	return e, err
}

const createEntry = `-- name: CreateEntry :one
INSERT INTO entries (
	customer_name, date_start, date_end,
	morning_mound, morning_sair, morning_rate,
	evening_mound, evening_sair, evening_rate,
	rent, commission, bandi, paid_amount
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateEntryParams struct {
	CustomerName string
	DateStart    string
	DateEnd      string
	MorningMound string
	MorningSair  int64
	MorningRate  string
	EveningMound string
	EveningSair  int64
	EveningRate  string
	Rent         string
	Commission   string
	Bandi        string
	PaidAmount   string
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createEntry,
		arg.CustomerName, arg.DateStart, arg.DateEnd,
		arg.MorningMound, arg.MorningSair, arg.MorningRate,
		arg.EveningMound, arg.EveningSair, arg.EveningRate,
		arg.Rent, arg.Commission, arg.Bandi, arg.PaidAmount,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getEntry = `-- name: GetEntry :one
SELECT ` + entryColumns + ` FROM entries WHERE id = ?`

func (q *Queries) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(q.db.QueryRowContext(ctx, getEntry, id))
}

const listEntries = `-- name: ListEntries :many
SELECT ` + entryColumns + ` FROM entries ORDER BY id`

func (q *Queries) ListEntries(ctx context.Context) ([]Entry, error) {
	return q.list(ctx, listEntries)
}

const listEntriesByDate = `-- name: ListEntriesByDate :many
SELECT ` + entryColumns + ` FROM entries WHERE date_start = ? ORDER BY id`

func (q *Queries) ListEntriesByDate(ctx context.Context, dateStart string) ([]Entry, error) {
	return q.list(ctx, listEntriesByDate, dateStart)
}

const listEntriesByMonth = `-- name: ListEntriesByMonth :many
SELECT ` + entryColumns + ` FROM entries WHERE substr(date_start, 1, 7) = ? ORDER BY id`

func (q *Queries) ListEntriesByMonth(ctx context.Context, yearMonth string) ([]Entry, error) {
	return q.list(ctx, listEntriesByMonth, yearMonth)
}

const getPendingSyncEntries = `-- name: GetPendingSyncEntries :many
SELECT ` + entryColumns + ` FROM entries WHERE sync_status IN ('pending', 'error') ORDER BY id LIMIT ?`

func (q *Queries) GetPendingSyncEntries(ctx context.Context, limit int64) ([]Entry, error) {
	return q.list(ctx, getPendingSyncEntries, limit)
}

const markEntrySynced = `-- name: MarkEntrySynced :exec
UPDATE entries SET sync_status = 'synced', synced_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = ?`

func (q *Queries) MarkEntrySynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntrySynced, id)
	return err
}

const markEntrySyncError = `-- name: MarkEntrySyncError :exec
UPDATE entries SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkEntrySyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntrySyncError, id)
	return err
}

const getEntrySyncStatus = `-- name: GetEntrySyncStatus :one
SELECT sync_status FROM entries WHERE id = ?`

func (q *Queries) GetEntrySyncStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx, getEntrySyncStatus, id).Scan(&status)
	return status, err
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
