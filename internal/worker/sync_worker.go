package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"milkbook/internal/amqp"
	"milkbook/internal/core"
	"milkbook/internal/sheets"
	"milkbook/internal/storage"
)

// EntrySource is the part of the SQLite repository the worker needs.
type EntrySource interface {
	GetEntry(ctx context.Context, id int64) (core.MilkEntry, error)
	SyncStatus(ctx context.Context, id int64) (string, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]core.MilkEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

var _ EntrySource = (*storage.SQLiteRepository)(nil)

// SyncWorker mirrors entries from SQLite to Google Sheets
type SyncWorker struct {
	// mu serializes syncEntry between the consumer and the poller.
	mu        sync.Mutex
	storage   EntrySource
	mirror    sheets.EntryMirror
	batchSize int
}

func NewSyncWorker(storage EntrySource, mirror sheets.EntryMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP. A
// message for an unknown id is dropped rather than requeued.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"queued_at", msg.Timestamp)

	entry, err := w.storage.GetEntry(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Sync message for unknown entry, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to sheets: %w", err)
	}
	return nil
}

// ProcessPendingEntries mirrors one batch of entries still pending or whose
// last attempt failed.
// It backs up the AMQP path when messages are lost.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck reconciles with the mirror and then drains a larger
// batch of pending entries, recovering from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if err := w.reconcile(ctx); err != nil {
		slog.WarnContext(ctx, "Mirror reconciliation failed", "error", err)
	}

	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, entry := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.syncEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", entry.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// reconcile marks pending entries that already appear in the mirror as
// synced. That happens when the worker stops between appending a row and
// recording it.
func (w *SyncWorker) reconcile(ctx context.Context) error {
	reader, ok := w.mirror.(sheets.MirrorReader)
	if !ok {
		return nil
	}
	ids, err := reader.ListEntryIDs(ctx)
	if err != nil {
		return err
	}
	present := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}

	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return err
	}
	fixed := 0
	for _, entry := range pending {
		if _, ok := present[entry.ID]; !ok {
			continue
		}
		if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
			return err
		}
		fixed++
	}
	if fixed > 0 {
		slog.InfoContext(ctx, "Reconciled entries already in mirror", "count", fixed)
	}
	return nil
}

// syncEntry appends an entry unless it is already mirrored, so redelivered
// messages and sweeps racing the consumer never add a second row.
func (w *SyncWorker) syncEntry(ctx context.Context, entry core.MilkEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	status, err := w.storage.SyncStatus(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}
	if status == storage.SyncSynced {
		slog.DebugContext(ctx, "Entry already mirrored, skipping", "id", entry.ID)
		return nil
	}

	ref, err := w.mirror.AppendEntry(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		// The row is in the sheet; reconcile picks this up on next start.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", entry.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		"id", entry.ID,
		"sheets_ref", ref,
		"customer", entry.CustomerName)
	return nil
}
