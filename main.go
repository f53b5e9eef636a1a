package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty-analyzer/api"
	"realty-analyzer/cache"
	"realty-analyzer/config"
	"realty-analyzer/llm"
	"realty-analyzer/metrics"
	"realty-analyzer/services"
	"realty-analyzer/storage"
	"realty-analyzer/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.LogDebug)

	logger.Info("=== Realty Analyzer starting ===")
	logger.Info("Config — source: %s | llm: %t | concurrency: %d | rate: %dms | cache: %t",
		cfg.DatasetSource, cfg.LLMEnabled(), cfg.MaxConcurrency, cfg.RateLimitMs, cfg.RedisAddr != "")

	dataset, err := loadDataset(cfg, logger)
	if err != nil {
		logger.Error("Failed to load dataset: %v", err)
		os.Exit(1)
	}
	metrics.DatasetRecords.Set(float64(dataset.Len()))
	logger.Info("Dataset loaded: %d records across %d locations", dataset.Len(), len(dataset.Locations()))

	gen, closeGen := buildGenerator(cfg, logger)
	defer closeGen()

	summarizer := services.NewSummarizer(gen, cfg.LLMMaxTokens, cfg.LLMTimeout(), logger)
	analyzer := services.NewAnalyzer(dataset, summarizer, logger)
	router := api.NewRouter(api.NewHandler(analyzer, logger), logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// loadDataset reads the whole dataset once from the configured source.
func loadDataset(cfg *config.Config, logger *utils.Logger) (*storage.Dataset, error) {
	switch cfg.DatasetSource {
	case "postgres":
		pg, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Make sure PostgreSQL is running and seeded: go run ./cmd/seed")
			return nil, err
		}
		defer pg.Close()
		return storage.Load(pg)
	default:
		return storage.Load(storage.NewFileSource(cfg.DatasetPath, cfg.DatasetSheet, logger))
	}
}

// buildGenerator returns nil when no API key is configured, which makes every
// Analyze summary use the template. The returned func releases the cache
// connection, if any.
func buildGenerator(cfg *config.Config, logger *utils.Logger) (llm.Generator, func()) {
	if !cfg.LLMEnabled() {
		logger.Info("OPENAI_API_KEY not set — summaries use the built-in template")
		return nil, func() {}
	}

	throttle := utils.NewThrottle(cfg.MaxConcurrency, cfg.RateLimitMs)
	var gen llm.Generator = llm.NewOpenAI(llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Endpoint:    cfg.OpenAIEndpoint,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout(),
		MaxRetries:  cfg.MaxRetries,
	}, throttle, logger)

	store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if store == nil {
		return gen, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Redis at %s unreachable (%v) — summaries will not be cached until it comes up", cfg.RedisAddr, err)
	} else {
		logger.Info("Summary cache enabled (redis %s, ttl %s)", cfg.RedisAddr, cfg.SummaryCacheTTL())
	}

	return cache.NewCachedGenerator(gen, store, cfg.SummaryCacheTTL(), logger), func() { _ = store.Close() }
}
