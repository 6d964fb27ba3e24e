package cache

import (
	"context"
	"sync"
	"time"

	"milkbook/internal/core"
	"milkbook/internal/ledger"
)

// EntryStore caches fetch results of an underlying store. Every Insert
// drops the whole cache, so reads never miss an entry this process wrote.
// It must only wrap a store that no other process writes to.
type EntryStore struct {
	next    ledger.EntryStore
	entries Cache[[]core.MilkEntry]

	// gen counts inserts; a fetch started under an older generation is
	// not cached.
	mu  sync.Mutex
	gen uint64
}

var _ ledger.EntryStore = (*EntryStore)(nil)

// NewEntryStore wraps next with an LRU of maxSize results kept for ttl.
func NewEntryStore(next ledger.EntryStore, maxSize int, ttl time.Duration) (*EntryStore, *LRUCache[[]core.MilkEntry]) {
	lru := NewLRUCache[[]core.MilkEntry](maxSize, ttl)
	return &EntryStore{next: next, entries: lru}, lru
}

func (s *EntryStore) Insert(ctx context.Context, e core.MilkEntry) (int64, error) {
	id, err := s.next.Insert(ctx, e)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.gen++
	s.entries.Purge()
	s.mu.Unlock()
	return id, nil
}

func (s *EntryStore) FetchByDate(ctx context.Context, date core.Date) ([]core.MilkEntry, error) {
	return s.load("date:"+date.String(), func() ([]core.MilkEntry, error) {
		return s.next.FetchByDate(ctx, date)
	})
}

func (s *EntryStore) FetchByMonth(ctx context.Context, month core.YearMonth) ([]core.MilkEntry, error) {
	return s.load("month:"+month.String(), func() ([]core.MilkEntry, error) {
		return s.next.FetchByMonth(ctx, month)
	})
}

func (s *EntryStore) FetchAll(ctx context.Context) ([]core.MilkEntry, error) {
	return s.load("all", func() ([]core.MilkEntry, error) {
		return s.next.FetchAll(ctx)
	})
}

// load returns a copy so callers cannot alter a cached result.
func (s *EntryStore) load(key string, fetch func() ([]core.MilkEntry, error)) ([]core.MilkEntry, error) {
	if cached, ok := s.entries.Get(key); ok {
		return append([]core.MilkEntry(nil), cached...), nil
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	entries, err := fetch()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.entries.Set(key, append([]core.MilkEntry(nil), entries...))
	}
	s.mu.Unlock()
	return entries, nil
}
