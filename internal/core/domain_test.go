package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-06-05", true},
		{" 2024-12-31 ", true},
		{"2024-13-01", false},
		{"05/06/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.Location() != time.UTC || d.Hour() != 0 {
				t.Fatalf("%q expected UTC midnight, got %v", tc.in, d.Time)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateString(t *testing.T) {
	if got := NewDate(2024, 6, 5).String(); got != "2024-06-05" {
		t.Fatalf("expected 2024-06-05, got %q", got)
	}
	if got := (Date{}).String(); got != "" {
		t.Fatalf("expected empty string for zero date, got %q", got)
	}
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ym.String() != "2024-06" {
		t.Fatalf("unexpected string %q", ym.String())
	}
	if !ym.Contains(NewDate(2024, 6, 30)) {
		t.Fatalf("expected June 30 to be in 2024-06")
	}
	if ym.Contains(NewDate(2024, 7, 1)) || ym.Contains(NewDate(2023, 6, 1)) {
		t.Fatalf("unexpected month match")
	}
	if NewDate(2024, 6, 5).YearMonth() != ym {
		t.Fatalf("YearMonth mismatch")
	}

	for _, bad := range []string{"2024-6-01", "2024/06", "June", ""} {
		if _, err := ParseYearMonth(bad); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("%q expected ErrInvalidMonth, got %v", bad, err)
		}
	}
}

func TestMilkEntryRate(t *testing.T) {
	e := MilkEntry{
		MorningMound: decimal.NewFromInt(2),
		MorningRate:  decimal.NewFromInt(10),
		EveningMound: decimal.NewFromInt(2),
		EveningRate:  decimal.NewFromInt(20),
	}
	r, ok := e.Rate()
	if !ok || !r.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected rate 15, got %s ok=%v", r, ok)
	}
	if !e.TotalMilk().Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected total milk 4, got %s", e.TotalMilk())
	}

	if _, ok := (MilkEntry{PaidAmount: decimal.NewFromInt(50)}).Rate(); ok {
		t.Fatalf("expected no rate for an entry without milk")
	}
}
