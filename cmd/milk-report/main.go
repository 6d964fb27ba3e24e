// Command milk-report writes a daily or monthly PDF report from the SQLite
// ledger.
//
//	milk-report -date 2024-06-05
//	milk-report -month 2024-06 -out june.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"milkbook/internal/cli"
	"milkbook/internal/config"
	"milkbook/internal/core"
	applog "milkbook/internal/log"
	"milkbook/internal/report"
	"milkbook/internal/services"
	"milkbook/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	date := flag.String("date", "", "day to report, YYYY-MM-DD (default today)")
	month := flag.String("month", "", "month to report, YYYY-MM")
	out := flag.String("out", "", "output file or directory (default the report's file name)")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
	title := flag.String("title", cfg.ReportTitle, "report title")
	landscape := flag.Bool("landscape", false, "render on landscape pages")
	flag.Parse()

	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentReport)

	if *date != "" && *month != "" {
		fmt.Fprintln(os.Stderr, "milk-report: -date and -month are mutually exclusive")
		os.Exit(2)
	}

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", *dbPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var opts []report.Option
	if *landscape {
		opts = append(opts, report.WithLandscape())
	}
	reports := services.NewReportService(repo, report.NewExporter(opts...), *title)
	path, rep, err := run(ctx, reports, *date, *month, *out, time.Now())
	switch {
	case errors.Is(err, services.ErrNoEntries):
		logger.Warn("No entries for period, nothing written", "error", err)
		os.Exit(3)
	case err != nil:
		logger.Error("Report failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Report written",
		"path", path,
		"kind", rep.Kind,
		"period", rep.Period,
		"entries", rep.Summary.Entries,
		"mandi_rate", rep.Summary.AvgRateDisplay())
}

// run renders the requested report and writes it under out.
func run(ctx context.Context, reports *services.ReportService, date, month, out string, now time.Time) (string, services.Report, error) {
	var (
		doc []byte
		rep services.Report
		err error
	)
	if month != "" {
		ym, perr := core.ParseYearMonth(month)
		if perr != nil {
			return "", rep, perr
		}
		doc, rep, err = reports.MonthlyPDF(ctx, ym)
	} else {
		day := core.DateOf(now)
		if date != "" {
			if day, err = core.ParseDate(date); err != nil {
				return "", rep, err
			}
		}
		doc, rep, err = reports.DailyPDF(ctx, day)
	}
	if err != nil {
		return "", rep, err
	}

	path := outputPath(out, rep.FileName())
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", rep, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return "", rep, fmt.Errorf("write report: %w", err)
	}
	return path, rep, nil
}

// outputPath resolves -out: empty means the report's name in the working
// directory, an existing directory or a trailing separator means the
// report's name inside it.
func outputPath(out, name string) string {
	if out == "" {
		return name
	}
	if os.IsPathSeparator(out[len(out)-1]) {
		return filepath.Join(out, name)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}
