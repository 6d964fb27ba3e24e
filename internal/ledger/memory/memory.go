package memory

import (
	"context"
	"sync"

	"milkbook/internal/core"
	"milkbook/internal/ledger"
)

var _ ledger.EntryStore = (*Store)(nil)

// Store keeps entries in process memory. Contents are lost on exit.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.MilkEntry
}

func New() *Store {
	return &Store{nextID: 1}
}

// Insert stores the entry and assigns the next id.
func (s *Store) Insert(_ context.Context, e core.MilkEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) FetchByDate(_ context.Context, date core.Date) ([]core.MilkEntry, error) {
	return s.filter(func(e core.MilkEntry) bool {
		return e.DateStart.Equal(date.Time)
	}), nil
}

func (s *Store) FetchByMonth(_ context.Context, month core.YearMonth) ([]core.MilkEntry, error) {
	return s.filter(func(e core.MilkEntry) bool {
		return month.Contains(e.DateStart)
	}), nil
}

func (s *Store) FetchAll(_ context.Context) ([]core.MilkEntry, error) {
	return s.filter(func(core.MilkEntry) bool { return true }), nil
}

func (s *Store) filter(keep func(core.MilkEntry) bool) []core.MilkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MilkEntry
	for _, e := range s.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Ping always succeeds; the store has nothing to reach.
func (s *Store) Ping(context.Context) error {
	return nil
}
