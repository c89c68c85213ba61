package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"peerprep/interview/internal/audit"
	"peerprep/interview/internal/config"
	"peerprep/interview/internal/jobs"
	"peerprep/interview/internal/llm"
	_ "peerprep/interview/internal/llm/gemini"
	"peerprep/interview/internal/metrics"
	"peerprep/interview/internal/prompts"
	"peerprep/interview/internal/repositories"
	"peerprep/interview/internal/secure"
	"peerprep/interview/internal/taskqueue"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func initDatabase(cfg *config.Config, cipher *secure.FieldCipher) (*repositories.Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	store := repositories.NewStore(db, cipher)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// healthHandler reports liveness of the service's two backing stores.
func healthHandler(store *repositories.Store, rdb *redis.Client, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{
			"status":   "ok",
			"provider": provider,
			"database": "ok",
			"redis":    "ok",
		}
		code := http.StatusOK

		if sqlDB, err := store.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded", zap.String("provider", cfg.Provider))

	cipher, err := secure.NewFieldCipher(cfg.FieldKey)
	if err != nil {
		logger.Fatal("Failed to initialize field encryption", zap.Error(err))
	}

	store, err := initDatabase(cfg, cipher)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	promptManager, err := prompts.NewManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	costs := llm.NewCostEstimator(metrics.AddAICost)
	queueClient := taskqueue.NewClient(rdb, cfg.Queue.ResultTTL)
	handlers := &taskqueue.Handlers{
		Provider: aiProvider,
		Prompts:  promptManager,
		Cost:     costs,
	}

	// Workers pull grading, generation and summary jobs off the durable
	// queues; the orchestrating service enqueues and awaits through the same
	// client from its own process.
	policy := taskqueue.RetryPolicy{
		MaxAttempts:    cfg.Queue.MaxAttempts,
		BaseDelay:      cfg.Queue.BaseDelay,
		AttemptTimeout: cfg.Queue.AttemptTimeout,
	}
	workerHandlers := map[string]taskqueue.Handler{
		taskqueue.KindGenerateQuestions: handlers.GenerateQuestions(),
		taskqueue.KindGradeAnswer:       handlers.GradeAnswer(),
		taskqueue.KindGenerateSummary:   handlers.Summarize(),
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workerWG sync.WaitGroup
	for kind, handler := range workerHandlers {
		for i := 0; i < cfg.Queue.WorkersPerKind; i++ {
			worker := taskqueue.NewWorker(kind, queueClient, handler, policy, logger)
			workerWG.Add(1)
			go func() {
				defer workerWG.Done()
				worker.Run(workerCtx)
			}()
		}
	}
	logger.Info("Workers started",
		zap.Int("kinds", len(workerHandlers)),
		zap.Int("perKind", cfg.Queue.WorkersPerKind))

	auditor := audit.NewDBRecorder(store.DB, logger)
	expirer := jobs.NewSessionExpirerJob(store, auditor, &jobs.ExpirerConfig{
		Schedule:   cfg.ExpirySchedule,
		SessionTTL: cfg.SessionTTL,
		Enabled:    true,
	}, logger)
	if err := expirer.Start(); err != nil {
		logger.Fatal("Failed to start session expirer", zap.Error(err))
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(30*time.Second))
	router.Get("/healthz", healthHandler(store, rdb, aiProvider.GetProviderName()))
	router.Handle("/metrics", metrics.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	expirer.Stop()
	stopWorkers()
	workerWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		logger.Error("Redis close failed", zap.Error(err))
	}

	logger.Info("Interview service stopped")
}
