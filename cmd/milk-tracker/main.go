package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"milkbook/internal/backend"
	"milkbook/internal/cache"
	"milkbook/internal/cli"
	apphttp "milkbook/internal/http"
	applog "milkbook/internal/log"
	"milkbook/internal/report"
	"milkbook/internal/scheduler"
	"milkbook/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The server is the only writer, so a read cache purged on insert is safe.
	store, entryCache := cache.NewEntryStore(result.Backend, 200, 5*time.Minute)
	cacheManager := cache.NewManager()
	cacheManager.Register(entryCache)
	cacheManager.StartCleanup(10 * time.Minute)

	entries := services.NewEntryService(store, result.Publisher)
	reports := services.NewReportService(store, report.NewExporter(), cfg.ReportTitle)

	var sched *scheduler.Scheduler
	if cfg.ReportSchedule != "" {
		sched, err = scheduler.New(cfg.ReportSchedule, cfg.ReportDir, reports)
		if err != nil {
			logger.Error("Failed to create report scheduler", "error", err)
			os.Exit(1)
		}
		if err := sched.Start(); err != nil {
			logger.Error("Failed to start report scheduler", "error", err)
			os.Exit(1)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Entries:            entries,
		Reports:            reports,
		Store:              result.Backend,
		AccessPassword:     cfg.AccessPassword,
		AccessPasswordHash: cfg.AccessPasswordHash,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if sched != nil {
			sched.Stop(ctx)
		}
		cacheManager.Stop()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting milk-tracker",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"mirror", result.Publisher != nil,
		"access_gate", cfg.AccessPassword != "" || cfg.AccessPasswordHash != "",
		"report_schedule", cfg.ReportSchedule)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
