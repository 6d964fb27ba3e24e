package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"milkbook/internal/core"
	"milkbook/internal/ledger/ledgertest"
	"milkbook/internal/ledger/memory"
	"milkbook/internal/report"
	"milkbook/internal/services"
)

func newReports(t *testing.T) *services.ReportService {
	t.Helper()
	s := memory.New()
	for _, e := range []core.MilkEntry{
		ledgertest.Entry("Ravi", core.NewDate(2024, 6, 5)),
		ledgertest.Entry("Sunil", core.NewDate(2024, 6, 20)),
	} {
		if _, err := s.Insert(context.Background(), e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return services.NewReportService(s, report.NewExporter(), "Milk Entry Report")
}

func TestRun(t *testing.T) {
	now := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		date     string
		month    string
		wantFile string
		wantN    int
	}{
		{"default is today", "", "", "daily_report_2024-06-05.pdf", 1},
		{"explicit date", "2024-06-20", "", "daily_report_2024-06-20.pdf", 1},
		{"month", "", "2024-06", "monthly_report_2024-06.pdf", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, rep, err := run(context.Background(), newReports(t), tt.date, tt.month, dir, now)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if path != filepath.Join(dir, tt.wantFile) {
				t.Errorf("path = %q, want %q", path, filepath.Join(dir, tt.wantFile))
			}
			if rep.Summary.Entries != tt.wantN {
				t.Errorf("entries = %d, want %d", rep.Summary.Entries, tt.wantN)
			}
			doc, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !bytes.HasPrefix(doc, []byte("%PDF-")) {
				t.Error("output is not a PDF")
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	now := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	dir := t.TempDir()

	if _, _, err := run(context.Background(), newReports(t), "2024-07-01", "", dir, now); !errors.Is(err, services.ErrNoEntries) {
		t.Errorf("empty day: err = %v, want ErrNoEntries", err)
	}
	if _, _, err := run(context.Background(), newReports(t), "05/06/2024", "", dir, now); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad date: err = %v, want ErrInvalidDate", err)
	}
	if _, _, err := run(context.Background(), newReports(t), "", "2024-6", dir, now); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("bad month: err = %v, want ErrInvalidMonth", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files written on error", len(entries))
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	name := "daily_report_2024-06-05.pdf"
	tests := []struct {
		out  string
		want string
	}{
		{"", name},
		{dir, filepath.Join(dir, name)},
		{"reports" + string(os.PathSeparator), filepath.Join("reports", name)},
		{filepath.Join(dir, "june.pdf"), filepath.Join(dir, "june.pdf")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.out, name); got != tt.want {
			t.Errorf("outputPath(%q) = %q, want %q", tt.out, got, tt.want)
		}
	}
}
