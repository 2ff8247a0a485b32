package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blockgatepay/gateway/internal/application/services"
	"github.com/blockgatepay/gateway/internal/auth"
	"github.com/blockgatepay/gateway/internal/config"
	"github.com/blockgatepay/gateway/internal/infrastructure/notify"
	"github.com/blockgatepay/gateway/internal/infrastructure/persistence/postgres"
	"github.com/blockgatepay/gateway/internal/infrastructure/processor"
	"github.com/blockgatepay/gateway/internal/interfaces/rest/handlers"
	"github.com/blockgatepay/gateway/internal/interfaces/rest/middleware"
	"github.com/blockgatepay/gateway/internal/ratelimit"
	"github.com/blockgatepay/gateway/internal/webhook"
	"github.com/blockgatepay/gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	merchantRepo := postgres.NewMerchantRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	limiter := newLimiter(ctx, cfg, logger)

	authenticator := auth.NewAuthenticator(merchantRepo, cfg.Auth.CredentialPepper, logger)

	verifier, err := webhook.NewVerifier(cfg.Webhook.Secret, cfg.Webhook.Algorithm)
	if err != nil {
		logger.Error("failed to build webhook verifier", "error", err)
		os.Exit(1)
	}

	processorClient := processor.NewProcessorClient(cfg.Processor)
	retryProcessorClient := processor.NewRetryProcessorClient(processorClient, cfg.Retry)

	sender := notify.NewHTTPSender(cfg.Notify.Timeout)

	paymentService := services.NewPaymentService(
		paymentRepo,
		retryProcessorClient,
		cfg.Platform.BaseURL,
		cfg.Processor.Timeout,
		logger,
	)
	webhookService := services.NewWebhookService(
		verifier,
		paymentRepo,
		merchantRepo,
		notificationRepo,
		sender,
		cfg.Notify.Timeout,
		logger,
	)

	h := handlers.NewHandlers(paymentService, webhookService, logger)

	router := http.Handler(handlers.NewRouter(h, authenticator, limiter, logger))

	handler := middleware.Recovery(logger)(router)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	notificationWorker := worker.NewNotificationWorker(
		notificationRepo,
		merchantRepo,
		sender,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Notify.MaxAttempts,
		logger,
	)

	expirationWorker := worker.NewExpirationWorker(
		paymentRepo,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go notificationWorker.Start(workerCtx)
	go expirationWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// newLimiter prefers the shared Redis window; without a configured Redis it
// falls back to the per-process one.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) ratelimit.Limiter {
	if cfg.Redis.Addr == "" {
		logger.Warn("no redis configured, using in-process rate limiter")
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}

	logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	return ratelimit.NewRedisLimiter(client, cfg.RateLimit.Window, cfg.RateLimit.Max)
}
