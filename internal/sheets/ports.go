package sheets

import (
	"context"

	"milkbook/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryMirror copies stored entries to an external spreadsheet. The
	// database stays the source of truth; the mirror is best effort.
	EntryMirror interface {
		AppendEntry(ctx context.Context, e core.MilkEntry) (rowRef string, err error)
	}

	// MirrorReader lists what the mirror currently holds.
	MirrorReader interface {
		ListEntryIDs(ctx context.Context) ([]int64, error)
	}
)
