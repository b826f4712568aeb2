package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harikantbajaj/labsight/internal/api"
	"github.com/harikantbajaj/labsight/internal/config"
	"github.com/harikantbajaj/labsight/internal/extract"
	"github.com/harikantbajaj/labsight/internal/history"
	"github.com/harikantbajaj/labsight/internal/pipeline"
	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/risk"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Static reference data, loaded once and served read-only.
	tables, err := refdata.Load(cfg.RefdataPath)
	if err != nil {
		log.Error("failed to load reference tables", "error", err)
		os.Exit(1)
	}
	ref := refdata.NewProvider(tables)

	// The risk model is optional: without it the service runs degraded
	// and results simply omit the risk section.
	model, err := risk.Load(cfg.ModelPath)
	if err != nil {
		log.Warn("risk model not loaded, running degraded", "error", err)
		model = nil
	} else {
		log.Info("risk model loaded", "model_version", model.ModelVersion())
	}

	// Image recognition is optional in the same way; PDFs then never fall
	// back and image uploads are rejected.
	ocr, err := extract.NewOCRClient(cfg.OCRLanguage)
	if err != nil {
		log.Warn("image recognition unavailable", "error", err)
		ocr = nil
	}
	engine := extract.NewEngine(ocr, cfg.MinCharsPerPage)

	// SIGHUP re-reads the reference tables; in-flight runs keep the
	// snapshot they started with.
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		for range hup {
			fresh, err := refdata.Load(cfg.RefdataPath)
			if err != nil {
				log.Error("reference table reload failed", "error", err)
				continue
			}
			ref.Swap(fresh)
			log.Info("reference tables reloaded")
		}
	}()

	store, err := history.OpenSQLite(cfg.HistoryDSN)
	if err != nil {
		log.Error("failed to open history store", "error", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(engine, ref, model, store, log, cfg)
	orch := pipeline.NewOrchestrator(cfg, runner, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting uploads before draining the pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		store.Close()
		ocr.Close()
	}()

	log.Info("starting labsight", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
