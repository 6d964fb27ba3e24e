package services

import (
	"context"
	"fmt"
	"log/slog"

	"milkbook/internal/core"
	"milkbook/internal/ledger"
)

// SyncPublisher announces a stored entry to the sheet mirror.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id int64) error
}

// EntryService stores entries and notifies the mirror.
type EntryService struct {
	store     ledger.EntryWriter
	publisher SyncPublisher
}

// NewEntryService wires a store and an optional publisher (nil disables
// mirror notifications).
func NewEntryService(store ledger.EntryWriter, publisher SyncPublisher) *EntryService {
	return &EntryService{
		store:     store,
		publisher: publisher,
	}
}

// CreateEntry saves an entry and publishes a sync message. The entry is
// durable once this returns; a failed publish is only logged.
func (s *EntryService) CreateEntry(ctx context.Context, e core.MilkEntry) (int64, error) {
	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping sync message", "id", id)
		return id, nil
	}
	if err := s.publisher.PublishEntrySync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}

	return id, nil
}
