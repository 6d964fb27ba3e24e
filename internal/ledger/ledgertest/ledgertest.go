// Package ledgertest holds behaviour checks shared by every EntryStore
// implementation.
package ledgertest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"milkbook/internal/core"
	"milkbook/internal/ledger"
)

// Entry returns a fully populated entry starting on start and ending the
// next day.
func Entry(customer string, start core.Date) core.MilkEntry {
	return core.MilkEntry{
		CustomerName: customer,
		DateStart:    start,
		DateEnd:      core.DateOf(start.AddDate(0, 0, 1)),
		MorningMound: decimal.RequireFromString("2.5"),
		MorningSair:  3,
		MorningRate:  decimal.RequireFromString("120"),
		EveningMound: decimal.RequireFromString("1.25"),
		EveningSair:  2,
		EveningRate:  decimal.RequireFromString("118.5"),
		Rent:         decimal.RequireFromString("10"),
		Commission:   decimal.RequireFromString("4.75"),
		Bandi:        decimal.RequireFromString("1"),
		PaidAmount:   decimal.RequireFromString("400"),
	}
}

// Equal compares every field of two entries, decimals by value.
func Equal(a, b core.MilkEntry) bool {
	return a.ID == b.ID &&
		a.CustomerName == b.CustomerName &&
		a.DateStart.Equal(b.DateStart.Time) &&
		a.DateEnd.Equal(b.DateEnd.Time) &&
		a.MorningMound.Equal(b.MorningMound) &&
		a.MorningSair == b.MorningSair &&
		a.MorningRate.Equal(b.MorningRate) &&
		a.EveningMound.Equal(b.EveningMound) &&
		a.EveningSair == b.EveningSair &&
		a.EveningRate.Equal(b.EveningRate) &&
		a.Rent.Equal(b.Rent) &&
		a.Commission.Equal(b.Commission) &&
		a.Bandi.Equal(b.Bandi) &&
		a.PaidAmount.Equal(b.PaidAmount)
}

// Run exercises the EntryStore contract against a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) ledger.EntryStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert then fetch by date round-trips", func(t *testing.T) {
		s := newStore(t)
		want := Entry("Akram", core.NewDate(2024, 6, 5))
		id, err := s.Insert(ctx, want)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		want.ID = id

		got, err := s.FetchByDate(ctx, core.NewDate(2024, 6, 5))
		if err != nil {
			t.Fatalf("fetch by date: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(got))
		}
		if !Equal(got[0], want) {
			t.Fatalf("stored entry differs:\n got  %+v\n want %+v", got[0], want)
		}
	})

	t.Run("ids strictly increase", func(t *testing.T) {
		s := newStore(t)
		var last int64
		for i := 0; i < 5; i++ {
			id, err := s.Insert(ctx, Entry("C", core.NewDate(2024, 1, 1+i)))
			if err != nil {
				t.Fatalf("insert %d: %v", i, err)
			}
			if id <= last {
				t.Fatalf("id %d not greater than previous %d", id, last)
			}
			last = id
		}
	})

	t.Run("fetch by date is exact on start date", func(t *testing.T) {
		s := newStore(t)
		// Starts the day before but its range covers June 5.
		overlapping := Entry("Overlap", core.NewDate(2024, 6, 4))
		overlapping.DateEnd = core.NewDate(2024, 6, 6)
		mustInsert(t, s, overlapping)
		mustInsert(t, s, Entry("A", core.NewDate(2024, 6, 5)))
		mustInsert(t, s, Entry("B", core.NewDate(2024, 6, 5)))
		mustInsert(t, s, Entry("C", core.NewDate(2024, 6, 6)))

		got, err := s.FetchByDate(ctx, core.NewDate(2024, 6, 5))
		if err != nil {
			t.Fatalf("fetch by date: %v", err)
		}
		if names(got) != "A,B" {
			t.Fatalf("expected A,B, got %s", names(got))
		}

		none, err := s.FetchByDate(ctx, core.NewDate(2023, 6, 5))
		if err != nil || len(none) != 0 {
			t.Fatalf("expected no entries, got %d (err=%v)", len(none), err)
		}
	})

	t.Run("fetch by month uses start date only", func(t *testing.T) {
		s := newStore(t)
		spanning := Entry("Span", core.NewDate(2024, 5, 30))
		spanning.DateEnd = core.NewDate(2024, 6, 2)
		mustInsert(t, s, spanning)
		mustInsert(t, s, Entry("Jun1", core.NewDate(2024, 6, 1)))
		mustInsert(t, s, Entry("Jun30", core.NewDate(2024, 6, 30)))
		mustInsert(t, s, Entry("Jul1", core.NewDate(2024, 7, 1)))
		mustInsert(t, s, Entry("LastYear", core.NewDate(2023, 6, 15)))

		june, err := s.FetchByMonth(ctx, core.YearMonth{Year: 2024, Month: 6})
		if err != nil {
			t.Fatalf("fetch by month: %v", err)
		}
		if names(june) != "Jun1,Jun30" {
			t.Fatalf("expected Jun1,Jun30, got %s", names(june))
		}

		may, err := s.FetchByMonth(ctx, core.YearMonth{Year: 2024, Month: 5})
		if err != nil {
			t.Fatalf("fetch by month: %v", err)
		}
		if names(may) != "Span" {
			t.Fatalf("expected Span attributed to May, got %s", names(may))
		}
	})

	t.Run("fetch all returns insertion order", func(t *testing.T) {
		s := newStore(t)
		empty, err := s.FetchAll(ctx)
		if err != nil || len(empty) != 0 {
			t.Fatalf("expected empty store, got %d (err=%v)", len(empty), err)
		}
		mustInsert(t, s, Entry("X", core.NewDate(2024, 3, 1)))
		mustInsert(t, s, Entry("Y", core.NewDate(2024, 1, 1)))
		all, err := s.FetchAll(ctx)
		if err != nil {
			t.Fatalf("fetch all: %v", err)
		}
		if names(all) != "X,Y" {
			t.Fatalf("expected X,Y, got %s", names(all))
		}
	})

	t.Run("values are stored as provided", func(t *testing.T) {
		s := newStore(t)
		odd := core.MilkEntry{
			CustomerName: "",
			DateStart:    core.NewDate(2024, 2, 29),
			MorningMound: decimal.RequireFromString("-4"),
			MorningSair:  -1,
			PaidAmount:   decimal.RequireFromString("0.125"),
		}
		id := mustInsert(t, s, odd)
		odd.ID = id
		got, err := s.FetchByDate(ctx, core.NewDate(2024, 2, 29))
		if err != nil || len(got) != 1 {
			t.Fatalf("expected 1 entry, got %d (err=%v)", len(got), err)
		}
		if !Equal(got[0], odd) {
			t.Fatalf("stored entry differs:\n got  %+v\n want %+v", got[0], odd)
		}
	})
}

func mustInsert(t *testing.T, s ledger.EntryStore, e core.MilkEntry) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), e)
	if err != nil {
		t.Fatalf("insert %s: %v", e.CustomerName, err)
	}
	return id
}

func names(entries []core.MilkEntry) string {
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += e.CustomerName
	}
	return out
}
