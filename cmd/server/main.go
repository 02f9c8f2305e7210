package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"seoscout/internal/config"
	"seoscout/internal/db"
	"seoscout/internal/history"
	"seoscout/internal/jobs"
	"seoscout/internal/llm"
	"seoscout/internal/metrics"
	"seoscout/internal/provider"
	"seoscout/internal/ratelimit"
	"seoscout/internal/research"
	"seoscout/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Redis is optional: without it conversation history lives in memory
	// and is swept by a background job.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	} else {
		log.Println("REDIS_ADDR not set; conversation history is in-memory")
	}
	hist := history.NewStore(redisClient, cfg.HistoryTTL)

	// The one governor instance shared by everything that calls the
	// provider.
	governor, err := ratelimit.New(cfg.RateCeiling, cfg.RateWindow)
	if err != nil {
		log.Fatalf("Failed to create rate governor: %v", err)
	}
	metrics.Init(governor)
	metrics.InitRecorder(database)

	// The language model degrades to deterministic fallbacks when no key
	// is configured.
	var model llm.Client
	if cfg.LLMAPIKey != "" {
		model = llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	} else {
		log.Println("LLM_API_KEY not set; seed expansion and ranking use deterministic fallbacks")
	}

	metricsProvider := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderTimeout)

	pipeline := research.NewPipeline(
		research.NewExpander(model, logger),
		research.NewFetcher(metricsProvider, governor, cfg.PerSeedLimit, cfg.RetryBackoff, logger),
		research.NewRanker(model, logger),
		database,
		hist,
		cfg.DefaultRankK,
		logger,
	)

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		DB:       database,
		Redis:    redisClient,
		History:  hist,
		Pipeline: pipeline,
		Governor: governor,
		Logger:   logger,
	})

	// Background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	if memStore, ok := hist.(*history.MemoryStore); ok {
		sweeper := jobs.NewHistorySweeper(memStore, cfg.SweepInterval, logger)
		go sweeper.Start(jobCtx)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelJobs()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
