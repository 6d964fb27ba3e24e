package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"milkbook/internal/core"
	"milkbook/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.EntryStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries

	// insertMu serializes inserts so ids follow call order even with
	// several writers in this process.
	insertMu sync.Mutex
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, wrap("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap("open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap("ping database", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, wrap("run migrations", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return wrap("ping database", r.db.PingContext(ctx))
}

// Insert implements ledger.EntryWriter. The row is committed before the id
// is returned.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.MilkEntry) (int64, error) {
	r.insertMu.Lock()
	defer r.insertMu.Unlock()

	id, err := r.queries.CreateEntry(ctx, toParams(e))
	if err != nil {
		return 0, wrap("insert entry", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"customer", e.CustomerName,
		"date_start", e.DateStart.String(),
		"paid_amount", e.PaidAmount.String())

	return id, nil
}

// FetchByDate implements ledger.EntryReader
func (r *SQLiteRepository) FetchByDate(ctx context.Context, date core.Date) ([]core.MilkEntry, error) {
	rows, err := r.queries.ListEntriesByDate(ctx, date.String())
	if err != nil {
		return nil, wrap("list entries by date", err)
	}
	return toCoreList(rows)
}

// FetchByMonth implements ledger.EntryReader
func (r *SQLiteRepository) FetchByMonth(ctx context.Context, month core.YearMonth) ([]core.MilkEntry, error) {
	rows, err := r.queries.ListEntriesByMonth(ctx, month.String())
	if err != nil {
		return nil, wrap("list entries by month", err)
	}
	return toCoreList(rows)
}

// FetchAll implements ledger.EntryReader
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.MilkEntry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, wrap("list entries", err)
	}
	return toCoreList(rows)
}

// GetEntry retrieves a single entry by ID
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.MilkEntry, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MilkEntry{}, fmt.Errorf("get entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.MilkEntry{}, wrap("get entry", err)
	}
	return toCore(row)
}

// Sync statuses of the sync_status column.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// SyncStatus returns the mirror status of an entry.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, id int64) (string, error) {
	status, err := r.queries.GetEntrySyncStatus(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sync status %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", wrap("get sync status", err)
	}
	return status, nil
}

// GetPendingSyncEntries returns entries not yet mirrored to the sheet,
// including those whose last attempt failed.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]core.MilkEntry, error) {
	rows, err := r.queries.GetPendingSyncEntries(ctx, int64(limit))
	if err != nil {
		return nil, wrap("get pending sync entries", err)
	}
	return toCoreList(rows)
}

// MarkSynced marks an entry as successfully mirrored
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySynced(ctx, id); err != nil {
		return wrap("mark entry synced", err)
	}

	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySyncError(ctx, id); err != nil {
		return wrap("mark entry sync error", err)
	}

	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

func toParams(e core.MilkEntry) CreateEntryParams {
	return CreateEntryParams{
		CustomerName: e.CustomerName,
		DateStart:    e.DateStart.String(),
		DateEnd:      e.DateEnd.String(),
		MorningMound: e.MorningMound.String(),
		MorningSair:  e.MorningSair,
		MorningRate:  e.MorningRate.String(),
		EveningMound: e.EveningMound.String(),
		EveningSair:  e.EveningSair,
		EveningRate:  e.EveningRate.String(),
		Rent:         e.Rent.String(),
		Commission:   e.Commission.String(),
		Bandi:        e.Bandi.String(),
		PaidAmount:   e.PaidAmount.String(),
	}
}

func toCoreList(rows []Entry) ([]core.MilkEntry, error) {
	entries := make([]core.MilkEntry, 0, len(rows))
	for _, row := range rows {
		e, err := toCore(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// toCore converts a row back to an entry. Unparseable stored values mean the
// schema does not match what this code wrote.
func toCore(row Entry) (core.MilkEntry, error) {
	e := core.MilkEntry{
		ID:           row.ID,
		CustomerName: row.CustomerName,
		MorningSair:  row.MorningSair,
		EveningSair:  row.EveningSair,
	}

	var err error
	if e.DateStart, err = parseStoredDate(row.DateStart); err != nil {
		return e, wrap(fmt.Sprintf("decode entry %d date_start", row.ID), err)
	}
	if e.DateEnd, err = parseStoredDate(row.DateEnd); err != nil {
		return e, wrap(fmt.Sprintf("decode entry %d date_end", row.ID), err)
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"morning_mound", row.MorningMound, &e.MorningMound},
		{"morning_rate", row.MorningRate, &e.MorningRate},
		{"evening_mound", row.EveningMound, &e.EveningMound},
		{"evening_rate", row.EveningRate, &e.EveningRate},
		{"rent", row.Rent, &e.Rent},
		{"commission", row.Commission, &e.Commission},
		{"bandi", row.Bandi, &e.Bandi},
		{"paid_amount", row.PaidAmount, &e.PaidAmount},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return e, wrap(fmt.Sprintf("decode entry %d %s", row.ID, f.name), err)
		}
		*f.dst = d
	}
	return e, nil
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
