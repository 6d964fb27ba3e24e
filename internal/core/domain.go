package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
)

type (
	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}

	// MilkEntry is one vendor transaction for a customer over a date range.
	// Entries are append-only: ID is assigned by the store and nothing is
	// mutated after creation.
	MilkEntry struct {
		ID           int64
		CustomerName string
		DateStart    Date
		DateEnd      Date

		MorningMound decimal.Decimal
		MorningSair  int64
		MorningRate  decimal.Decimal

		EveningMound decimal.Decimal
		EveningSair  int64
		EveningRate  decimal.Decimal

		Rent       decimal.Decimal
		Commission decimal.Decimal
		Bandi      decimal.Decimal
		PaidAmount decimal.Decimal
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidNumber = errors.New("invalid number")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

// String returns the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// YearMonth returns the month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// ParseYearMonth parses a YYYY-MM month.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(YearMonthLayout, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w %q: %v", ErrInvalidMonth, s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether d falls within the month.
func (ym YearMonth) Contains(d Date) bool {
	return !d.IsZero() && d.Year() == ym.Year && d.Month() == ym.Month
}

// TotalMilk is the morning plus evening quantity.
func (e MilkEntry) TotalMilk() decimal.Decimal {
	return e.MorningMound.Add(e.EveningMound)
}

// Rate returns the quantity-weighted rate of the entry. ok is false when the
// entry carries no milk, in which case the rate is undefined.
func (e MilkEntry) Rate() (rate decimal.Decimal, ok bool) {
	qty := e.TotalMilk()
	if !qty.IsPositive() {
		return decimal.Zero, false
	}
	payment := e.MorningMound.Mul(e.MorningRate).Add(e.EveningMound.Mul(e.EveningRate))
	return payment.Div(qty), true
}
