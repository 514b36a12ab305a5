package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradsift/gradsift/app/analysis"
	"github.com/gradsift/gradsift/app/api"
	"github.com/gradsift/gradsift/app/cfg"
	"github.com/gradsift/gradsift/app/database"
	"github.com/gradsift/gradsift/app/ingest"
	"github.com/gradsift/gradsift/app/scrape"
	"github.com/gradsift/gradsift/app/standardize"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
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
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting GradSift server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	applicantRepo := database.NewApplicantRepository(db)

	// Standardization pipeline
	rules, err := standardize.LoadRules(appCfg.RulesFile)
	if err != nil {
		slog.Error("Failed to load standardization rules", "file", appCfg.RulesFile, "error", err)
		os.Exit(1)
	}

	cache, err := standardize.NewCache(appCfg.CacheSize)
	if err != nil {
		slog.Error("Failed to create standardization cache", "error", err)
		os.Exit(1)
	}

	var resolver standardize.Resolver
	if appCfg.LLMEndpoint != "" {
		resolver = standardize.NewClient(appCfg.LLMEndpoint, appCfg.LLMModel, appCfg.LLMAPIKey)
		slog.Info("Standardization fallback enabled", "model", appCfg.LLMModel)
	} else {
		slog.Warn("Standardization fallback disabled (LLM_ENDPOINT not set)")
	}

	standardizer := standardize.NewStandardizer(rules, cache, resolver)

	// Ingestion pipeline
	fetcher := scrape.NewFetcher(appCfg.SourceUrl, appCfg.UserAgent, appCfg.FetchRetries,
		time.Duration(appCfg.FetchBackoff)*time.Millisecond)

	gate := ingest.NewGate()
	loader := ingest.NewLoader(applicantRepo)
	runner := ingest.NewRunner(gate, fetcher, scrape.NewParser(), scrape.NewCleaner(),
		standardizer, loader, appCfg.AbortOnFetchError)

	defaults := ingest.Options{
		StartPage: appCfg.ScrapeStartPage,
		Pages:     appCfg.ScrapePages,
		Delay:     time.Duration(appCfg.ScrapeDelay) * time.Millisecond,
	}

	// Analysis snapshot, computed once before the server starts listening
	analysisService := analysis.NewService(applicantRepo, gate, appCfg.AnalysisTerm)
	if err := analysisService.Compute(); err != nil {
		slog.Warn("Initial analysis computation failed", "error", err)
	}

	if appCfg.PullInterval > 0 {
		pullScheduler := ingest.NewScheduler(runner, defaults,
			time.Duration(appCfg.PullInterval)*time.Minute)
		pullScheduler.Start()
		defer pullScheduler.Stop()
		slog.Info("Automatic data pulls enabled", "interval_minutes", appCfg.PullInterval)
	} else {
		slog.Info("Automatic data pulls disabled (PULL_INTERVAL not set)")
	}

	// HTTP server
	apiHandler := api.NewHandler(runner, analysisService, gate, applicantRepo, defaults)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

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
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// A pull in flight keeps running until the process exits; only the
	// listener and the ticker are stopped gracefully.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
