package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lunabriana98-creator/luna-app/internal/api"
	"github.com/lunabriana98-creator/luna-app/internal/coach"
	"github.com/lunabriana98-creator/luna-app/internal/database"
	"github.com/lunabriana98-creator/luna-app/internal/queue"
	"github.com/lunabriana98-creator/luna-app/internal/rules"
	"github.com/lunabriana98-creator/luna-app/pkg/logging"
	"github.com/lunabriana98-creator/luna-app/pkg/metrics"
	"github.com/lunabriana98-creator/luna-app/pkg/tracing"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("lunacoach service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("luna-coach")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbPathDefault := getEnv("DB_PATH", "lunacoach.db")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	useQueueDefault := getEnvBool("USE_QUEUE", false)
	concurrencyDefault := getEnvInt("WORKER_CONCURRENCY", 10)

	var (
		port        = flag.String("port", portDefault, "Server port (env: PORT)")
		dbPath      = flag.String("db", dbPathDefault, "Database file path (env: DB_PATH)")
		redisAddr   = flag.String("redis-addr", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		useQueue    = flag.Bool("use-queue", useQueueDefault, "Enable asynchronous rewriting via Redis queue (env: USE_QUEUE)")
		concurrency = flag.Int("worker-concurrency", concurrencyDefault, "Queue worker concurrency (env: WORKER_CONCURRENCY)")
	)
	flag.Parse()

	// Initialize database
	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize metrics
	businessMetrics := metrics.NewBusinessMetrics("lunacoach")
	dbMetrics := metrics.NewDatabaseMetrics("lunacoach")
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			dbMetrics.UpdateDBStats(db.Conn())
		}
	}()
	logger.Info("metrics initialized")

	// Initialize the rewrite engine with the default rule library
	textCoach := coach.New(rules.Default())

	// Initialize queue client and worker when async rewriting is enabled
	var queueClient *queue.Client
	var worker *queue.Worker
	if *useQueue {
		queueClient = queue.NewClient(*redisAddr, logger)
		defer queueClient.Close()

		worker = queue.NewWorker(*redisAddr, *concurrency, textCoach, db, logger, businessMetrics)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("queue worker stopped", "error", err)
				os.Exit(1)
			}
		}()
		logger.Info("queue worker started", "redis_addr", *redisAddr, "concurrency", *concurrency)
	} else {
		logger.Info("queue disabled, batch rewriting unavailable")
	}

	// Initialize API handler. The queue client is passed as nil interface
	// when the queue is disabled so the batch endpoint reports 503.
	var apiHandler http.Handler
	if queueClient != nil {
		apiHandler = api.NewHandler(db, textCoach, queueClient, businessMetrics)
	} else {
		apiHandler = api.NewHandler(db, textCoach, nil, businessMetrics)
	}

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("lunacoach")(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("lunacoach service starting",
			"port", *port,
			"database", *dbPath,
			"queue_enabled", *useQueue,
			"redis_addr", *redisAddr,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if worker != nil {
		worker.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
