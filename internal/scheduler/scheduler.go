// Package scheduler archives the daily PDF report on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"milkbook/internal/core"
	"milkbook/internal/services"
)

const runTimeout = 2 * time.Minute

// DailyReporter renders the daily report PDF.
type DailyReporter interface {
	DailyPDF(ctx context.Context, date core.Date) ([]byte, services.Report, error)
}

// Scheduler writes REPORT_DIR/daily_report_<date>.pdf on each tick.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	dir      string
	reports  DailyReporter
	now      func() time.Time
}

// New validates the five-field cron expression and returns a stopped
// scheduler.
func New(schedule, dir string, reports DailyReporter) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse report schedule %q: %w", schedule, err)
	}
	if dir == "" {
		return nil, errors.New("report directory is empty")
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		dir:      dir,
		reports:  reports,
		now:      time.Now,
	}, nil
}

// Start registers the archive job and starts the cron loop.
func (s *Scheduler) Start() error {
	slog.Info("Starting report scheduler", "schedule", s.schedule, "dir", s.dir)
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	slog.InfoContext(ctx, "Stopping report scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report job still running at shutdown")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.ArchiveDaily(ctx, s.now()); err != nil {
		slog.ErrorContext(ctx, "Scheduled report failed", "error", err)
	}
}

// ArchiveDaily writes the report for the day of now. It returns the written
// path, or "" when the day has no entries.
func (s *Scheduler) ArchiveDaily(ctx context.Context, now time.Time) (string, error) {
	date := core.DateOf(now)
	pdf, rep, err := s.reports.DailyPDF(ctx, date)
	if errors.Is(err, services.ErrNoEntries) {
		slog.InfoContext(ctx, "No entries for scheduled report, skipping", "date", date.String())
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("render daily report %s: %w", date, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(s.dir, rep.FileName())
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	slog.InfoContext(ctx, "Daily report archived",
		"path", path,
		"entries", rep.Summary.Entries,
		"bytes", len(pdf))
	return path, nil
}
