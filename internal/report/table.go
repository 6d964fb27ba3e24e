package report

import (
	"strconv"

	"milkbook/internal/core"
)

// EntryColumns are the column names of an entry table.
var EntryColumns = []string{
	"ID", "Customer Name", "Start Date", "End Date",
	"Morning Mound", "Morning Sair", "Morning Rate",
	"Evening Mound", "Evening Sair", "Evening Rate",
	"Rent", "Commission", "Bandi", "Paid Amount",
}

const TotalMilkColumn = "Total Milk"

// Table is a titled grid of stringified cells ready for ExportTable.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// EntryTable lays out entries one per row. withTotal appends a per-row
// Total Milk column, as the daily report does.
func EntryTable(title string, entries []core.MilkEntry, withTotal bool) Table {
	cols := append([]string(nil), EntryColumns...)
	if withTotal {
		cols = append(cols, TotalMilkColumn)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CustomerName,
			e.DateStart.String(),
			e.DateEnd.String(),
			e.MorningMound.String(),
			strconv.FormatInt(e.MorningSair, 10),
			e.MorningRate.String(),
			e.EveningMound.String(),
			strconv.FormatInt(e.EveningSair, 10),
			e.EveningRate.String(),
			e.Rent.String(),
			e.Commission.String(),
			e.Bandi.String(),
			e.PaidAmount.String(),
		}
		if withTotal {
			row = append(row, e.TotalMilk().String())
		}
		rows = append(rows, row)
	}
	return Table{Title: title, Columns: cols, Rows: rows}
}

// Export renders the table with x.
func (t Table) Export(x *Exporter) ([]byte, error) {
	return x.ExportTable(t.Title, t.Columns, t.Rows)
}
