// Package main provides the HTTP server for the Lumina journaling service.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luminahealth/lumina-go/internal/config"
	"github.com/luminahealth/lumina-go/internal/crypto"
	"github.com/luminahealth/lumina-go/internal/db"
	"github.com/luminahealth/lumina-go/internal/llm"
	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/pipeline"
	"github.com/luminahealth/lumina-go/internal/server"
	"github.com/luminahealth/lumina-go/internal/store"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all journal data on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, closeLogs := config.SetupLogger(cfg)
	defer func() {
		if err := closeLogs(); err != nil {
			logger.Error("failed to close log file", "error", err)
		}
	}()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting lumina-server",
		"host", cfg.Host, "port", cfg.Port,
		"llm_provider", string(cfg.LLMProvider),
		"crisis_detection", cfg.CrisisDetectionEnabled)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = dbClient.InitSchema(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("LUMINA_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbClient.WipeData(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("wiped all journal data")
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	model, err := llm.NewModel(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to initialize llm", "error", err)
		os.Exit(1)
	}

	cipher, err := crypto.NewCipher(cfg.FernetKey)
	if err != nil {
		logger.Error("failed to initialize cipher", "error", err)
		os.Exit(1)
	}
	collector := metrics.NewCollector()
	recorder := store.New(dbClient, cipher, logger).WithMetrics(collector)

	pipeOpts := []pipeline.Option{
		pipeline.WithStageTimeout(cfg.StageTimeout),
		pipeline.WithCrisisLLM(cfg.CrisisDetectionEnabled),
		pipeline.WithMetrics(collector),
	}
	if cfg.EmbeddingConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		embedder, err := llm.NewEmbedder(ctx, cfg)
		cancel()
		if err != nil {
			// Embedding is best-effort; the pipeline runs without it.
			logger.Warn("embedder unavailable, entries will be stored without vectors", "error", err)
		} else {
			pipeOpts = append(pipeOpts, pipeline.WithEmbedder(embedder))
			logger.Info("embedder ready", "model", embedder.Model(), "dimension", embedder.Dimension())
		}
	} else {
		logger.Info("embedding not configured, skipping vector generation")
	}

	pipe := pipeline.New(model, recorder, logger, pipeOpts...)

	srv, err := server.New(pipe, recorder, collector, logger, server.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		CrisisDetection: cfg.CrisisDetectionEnabled,
	})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
