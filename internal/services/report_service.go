package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"milkbook/internal/core"
	"milkbook/internal/ledger"
	"milkbook/internal/report"
)

// ErrNoEntries is returned when a document is requested for an empty period.
var ErrNoEntries = errors.New("no entries for period")

// Report is a period's entries with their summary.
type Report struct {
	Kind    string // "daily" or "monthly"
	Period  string // YYYY-MM-DD or YYYY-MM
	Entries []core.MilkEntry
	Summary core.Summary
}

// FileName is the download name of the report's PDF.
func (r Report) FileName() string {
	return fmt.Sprintf("%s_report_%s.pdf", r.Kind, r.Period)
}

// ReportService runs the daily and monthly reports.
type ReportService struct {
	reader   ledger.EntryReader
	exporter *report.Exporter
	title    string
}

func NewReportService(reader ledger.EntryReader, exporter *report.Exporter, title string) *ReportService {
	if exporter == nil {
		exporter = report.NewExporter()
	}
	if title == "" {
		title = report.DefaultTitle
	}
	return &ReportService{reader: reader, exporter: exporter, title: title}
}

// Daily reports entries starting on date.
func (s *ReportService) Daily(ctx context.Context, date core.Date) (Report, error) {
	entries, err := s.reader.FetchByDate(ctx, date)
	if err != nil {
		return Report{}, fmt.Errorf("daily report %s: %w", date, err)
	}
	return Report{
		Kind:    "daily",
		Period:  date.String(),
		Entries: entries,
		Summary: core.Summarize(entries),
	}, nil
}

// Today is the daily report for the calendar day of now.
func (s *ReportService) Today(ctx context.Context, now time.Time) (Report, error) {
	return s.Daily(ctx, core.DateOf(now))
}

// Monthly reports entries starting in month.
func (s *ReportService) Monthly(ctx context.Context, month core.YearMonth) (Report, error) {
	entries, err := s.reader.FetchByMonth(ctx, month)
	if err != nil {
		return Report{}, fmt.Errorf("monthly report %s: %w", month, err)
	}
	return Report{
		Kind:    "monthly",
		Period:  month.String(),
		Entries: entries,
		Summary: core.Summarize(entries),
	}, nil
}

// All reports every stored entry.
func (s *ReportService) All(ctx context.Context) (Report, error) {
	entries, err := s.reader.FetchAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list entries: %w", err)
	}
	return Report{
		Kind:    "all",
		Entries: entries,
		Summary: core.Summarize(entries),
	}, nil
}

// DailyPDF renders the daily report, with a Total Milk column.
func (s *ReportService) DailyPDF(ctx context.Context, date core.Date) ([]byte, Report, error) {
	r, err := s.Daily(ctx, date)
	if err != nil {
		return nil, r, err
	}
	return s.render(r, true)
}

// MonthlyPDF renders the monthly report.
func (s *ReportService) MonthlyPDF(ctx context.Context, month core.YearMonth) ([]byte, Report, error) {
	r, err := s.Monthly(ctx, month)
	if err != nil {
		return nil, r, err
	}
	return s.render(r, false)
}

func (s *ReportService) render(r Report, withTotal bool) ([]byte, Report, error) {
	if len(r.Entries) == 0 {
		return nil, r, fmt.Errorf("%s report %s: %w", r.Kind, r.Period, ErrNoEntries)
	}
	doc, err := report.EntryTable(s.title, r.Entries, withTotal).Export(s.exporter)
	if err != nil {
		return nil, r, fmt.Errorf("export %s report %s: %w", r.Kind, r.Period, err)
	}
	return doc, r, nil
}
