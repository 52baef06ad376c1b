package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/LukasRub/crisiscorpus/app/api"
	"github.com/LukasRub/crisiscorpus/app/cfg"
	"github.com/LukasRub/crisiscorpus/app/corpus"
	"github.com/LukasRub/crisiscorpus/app/database"
	"github.com/LukasRub/crisiscorpus/app/fetcher"
	"github.com/LukasRub/crisiscorpus/app/pipeline"
	"github.com/LukasRub/crisiscorpus/app/topics"
	"github.com/LukasRub/crisiscorpus/app/twitter"
)

func main() {
	appCfg, command, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Crisis Corpus", "version", appCfg.Version, "command", command)

	db, err := openDatabase(appCfg.DBPath)
	if err != nil {
		slog.Error("Database initialization failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	switch command {
	case "prepare":
		err = runPrepare(appCfg, db)
	case "serve":
		err = runServe(appCfg, db)
	}
	if err != nil {
		slog.Error("Run failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func openDatabase(path string) (*database.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := database.NewConnection(path)
	if err != nil {
		return nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Database ready", "path", path, "migration_version", version, "dirty", dirty)

	return db, nil
}

// runPrepare executes one dataset-preparation pipeline run. The context is
// cancelled by SIGINT/SIGTERM so a long quota wait can be aborted.
func runPrepare(appCfg *cfg.Cfg, db *database.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := twitter.LoadCredentials(appCfg.APIKeysPath)
	if err != nil {
		return err
	}

	client := twitter.NewClient(creds, &http.Client{Timeout: 30 * time.Second}, appCfg.UserAgent)

	batchFetcher := fetcher.New(client,
		fetcher.WithBatchSize(appCfg.BatchSize),
		fetcher.WithConcurrency(appCfg.FetchConcurrency),
		fetcher.WithEpsilon(time.Duration(appCfg.QuotaEpsilon)*time.Second),
		fetcher.WithQuotaRetries(appCfg.QuotaRetries))

	prep := pipeline.New(
		appCfg.LabelsPath,
		topics.NewParser(appCfg.TopicsPath),
		batchFetcher,
		pipeline.NewWriter(appCfg.DataDir),
		database.NewDocumentRepository(db),
		database.NewLabelRepository(db))

	return prep.Run(ctx)
}

// runServe starts the corpus HTTP API with graceful shutdown.
func runServe(appCfg *cfg.Cfg, db *database.DB) error {
	reader := corpus.NewReader(filepath.Join(appCfg.DataDir, "corpus"))
	handler := api.NewHandler(database.NewDocumentRepository(db), database.NewLabelRepository(db), reader)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
