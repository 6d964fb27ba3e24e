package ledger

import (
	"context"

	"milkbook/internal/core"
)

// Ports for entry persistence.
type (
	// EntryWriter appends entries. Insert assigns the next id and returns it
	// only once the entry is durable.
	EntryWriter interface {
		Insert(ctx context.Context, e core.MilkEntry) (id int64, err error)
	}

	// EntryReader retrieves entries in insertion (id) order.
	EntryReader interface {
		// FetchByDate returns entries whose start date equals date.
		FetchByDate(ctx context.Context, date core.Date) ([]core.MilkEntry, error)
		// FetchByMonth returns entries whose start date falls in the month.
		// The end date is ignored.
		FetchByMonth(ctx context.Context, month core.YearMonth) ([]core.MilkEntry, error)
		FetchAll(ctx context.Context) ([]core.MilkEntry, error)
	}

	EntryStore interface {
		EntryWriter
		EntryReader
	}
)
