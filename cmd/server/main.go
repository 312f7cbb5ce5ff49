package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"homeval/server/config"
	"homeval/server/internal/acquisition"
	"homeval/server/internal/api"
	"homeval/server/internal/database"
	"homeval/server/internal/geocoding"
	"homeval/server/internal/narrative"
	"homeval/server/internal/pipeline"
	"homeval/server/internal/processor"
	"homeval/server/internal/queue"
	"homeval/server/internal/rentcast"
	"homeval/server/internal/scheduler"
	"homeval/server/internal/scraping"
	"homeval/server/internal/valuation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := cfg.Logger()
	gin.SetMode(cfg.Server.GinMode)

	// Make sure the database directory exists
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Data collaborators
	sources := acquisition.Sources{
		Geocoder: geocoding.NewGeocoder(logger, cfg.Geocoding.CacheDir, geocoding.WithBaseURL(cfg.Geocoding.BaseURL)),
		Listings: scraping.NewListingScraper(logger, nil),
	}
	if client := rentcast.NewClient(cfg.RentCast.APIKey, logger, rentcast.WithBaseURL(cfg.RentCast.BaseURL)); client.Enabled() {
		sources.Properties = client
	} else {
		logger.Info("RentCast API key not set, property data will come from listings and request input only")
	}

	acquirer := acquisition.NewService(sources, cfg.CompRadiusKm, logger)
	evaluator := valuation.NewEvaluator(cfg.Defaults())
	summarizer := narrative.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	runner := pipeline.New(acquirer, evaluator, summarizer, logger)

	// Bulk evaluation
	jobQueue := queue.NewJobQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.GetDB(), runner, jobQueue, cfg, logger)
	batchProcessor.Start()

	// History retention
	historyScheduler := scheduler.NewScheduler(db, cfg.HistoryRetentionDays, logger)
	historyScheduler.Start()
	defer historyScheduler.Stop()

	handler := api.NewHandler(db, runner, jobQueue, evaluator.Defaults(), cfg.BatchProcessing.MaxBatchSize, logger)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	// Finish queued batches before closing the database
	batchProcessor.Stop()
	logger.Info("Server stopped")
}
