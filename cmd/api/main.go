package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/skladapp/sklad-backend/api/routes"
	"github.com/skladapp/sklad-backend/internal/backup"
	"github.com/skladapp/sklad-backend/internal/parts"
	"github.com/skladapp/sklad-backend/internal/scan"
	"github.com/skladapp/sklad-backend/pkg/config"
	"github.com/skladapp/sklad-backend/pkg/logger"
	"github.com/skladapp/sklad-backend/pkg/metrics"
	"github.com/skladapp/sklad-backend/pkg/vision"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sklad"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sklad",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	repo := parts.NewRepository(cfg.Storage.StorageDir())
	if err := repo.Initialize(); err != nil {
		logg.Error(context.Background(), "failed to initialize part storage", err)
		os.Exit(1)
	}

	partsService, err := parts.NewService(parts.ServiceParams{
		Repo:    repo,
		Metrics: storeMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create parts service", err)
		os.Exit(1)
	}

	backupService, err := backup.NewService(backup.ServiceParams{
		Dir:     cfg.Backup.Dir,
		Store:   partsService,
		Metrics: storeMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create backup service", err)
		os.Exit(1)
	}

	var recognizer scan.Recognizer
	if cfg.Vision.Enabled() {
		recognizer = vision.New(cfg.Vision)
	} else {
		logg.Warn(context.Background(), "vision api key not set, image scanning disabled")
	}
	scanService := scan.NewService(scan.ServiceParams{
		Recognizer: recognizer,
		Metrics:    storeMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"data_dir":    cfg.Storage.DataDir,
		"backup_dir":  cfg.Backup.Dir,
		"ocr_enabled": cfg.Vision.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, httpMetrics, partsService, backupService, scanService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
