package google

import (
	"fmt"
	"strconv"
	"strings"

	"milkbook/internal/core"
	"milkbook/internal/report"
)

// headerRow is written once to an empty sheet. It matches the PDF table so
// the two read the same.
func headerRow() []any {
	cols := append(append([]string(nil), report.EntryColumns...), report.TotalMilkColumn)
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

// entryRow lays out one entry in header order. Decimals are sent in their
// exact text form and parsed by the sheet under USER_ENTERED.
func entryRow(e core.MilkEntry) []any {
	return []any{
		e.ID,
		e.CustomerName,
		e.DateStart.String(),
		e.DateEnd.String(),
		e.MorningMound.String(),
		e.MorningSair,
		e.MorningRate.String(),
		e.EveningMound.String(),
		e.EveningSair,
		e.EveningRate.String(),
		e.Rent.String(),
		e.Commission.String(),
		e.Bandi.String(),
		e.PaidAmount.String(),
		e.TotalMilk().String(),
	}
}

// parseIDColumn reads entry ids from column A, skipping the header and any
// cell that is not an integer.
func parseIDColumn(values [][]interface{}) []int64 {
	ids := make([]int64, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		s := strings.TrimSpace(toString(row[0]))
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
