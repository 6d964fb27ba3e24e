package core

import "github.com/shopspring/decimal"

// Summary holds the totals shown for a day or month of entries.
type Summary struct {
	Entries      int
	TotalMorning decimal.Decimal
	TotalEvening decimal.Decimal
	TotalMilk    decimal.Decimal
	TotalPaid    decimal.Decimal
	// AvgRate is the mandi rate: the plain mean of each entry's weighted
	// rate, over entries that carry milk. It is not total payment divided by
	// total milk.
	AvgRate decimal.Decimal
}

// Summarize computes totals and the mandi rate. An empty input yields an
// all-zero summary.
func Summarize(entries []MilkEntry) Summary {
	s := Summary{
		Entries:      len(entries),
		TotalMorning: decimal.Zero,
		TotalEvening: decimal.Zero,
		TotalPaid:    decimal.Zero,
		AvgRate:      decimal.Zero,
	}

	rateSum := decimal.Zero
	rated := 0
	for _, e := range entries {
		s.TotalMorning = s.TotalMorning.Add(e.MorningMound)
		s.TotalEvening = s.TotalEvening.Add(e.EveningMound)
		s.TotalPaid = s.TotalPaid.Add(e.PaidAmount)

		if r, ok := e.Rate(); ok {
			rateSum = rateSum.Add(r)
			rated++
		}
	}
	s.TotalMilk = s.TotalMorning.Add(s.TotalEvening)

	if rated > 0 {
		s.AvgRate = rateSum.Div(decimal.NewFromInt(int64(rated)))
	}
	return s
}

// AvgRateDisplay formats the mandi rate to two decimals.
func (s Summary) AvgRateDisplay() string {
	return s.AvgRate.StringFixed(2)
}
