package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vahe555123/busines/internal/config"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	aiAdapters "github.com/Vahe555123/busines/internal/infra/adapters/ai"
	"github.com/Vahe555123/busines/internal/infra/api"
	pg "github.com/Vahe555123/busines/internal/infra/db/postgres"
	"github.com/Vahe555123/busines/internal/infra/logging"
	"github.com/Vahe555123/busines/internal/infra/mail"
	"github.com/Vahe555123/busines/internal/infra/metrics"
	"github.com/Vahe555123/busines/internal/infra/payment"
	red "github.com/Vahe555123/busines/internal/infra/redis"
	"github.com/Vahe555123/busines/internal/infra/sched"
	"github.com/Vahe555123/busines/internal/infra/telegram"
	"github.com/Vahe555123/busines/internal/infra/worker"
	"github.com/Vahe555123/busines/internal/infra/ws"
	"github.com/Vahe555123/busines/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cors)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = redisClient.Close() }()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	pricingRepo := pg.NewPricingRepoCacheDecorator(pg.NewPricingRepo(pool), redisClient)
	paymentRepo := pg.NewPaymentRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	chatRepo := pg.NewChatRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Outbound adapters ----
	var gateway adapter.PaymentGateway
	if cfg.Payment.YooKassa.ShopID != "" && cfg.Payment.YooKassa.SecretKey != "" {
		gateway = payment.NewYooKassaGateway(cfg.Payment.YooKassa.ShopID, cfg.Payment.YooKassa.SecretKey)
		logger.Info().Msg("payment gateway: yookassa")
	} else {
		gateway = payment.NewNoopGateway()
		logger.Warn().Msg("payment gateway not configured; checkout disabled")
	}

	var mailer adapter.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(&cfg.Mail, *logger)
	} else {
		mailer = mail.NewNoopMailer(*logger)
		logger.Warn().Msg("smtp not configured; confirmation emails disabled")
	}

	var ops adapter.OpsNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		ops, err = telegram.NewOpsNotifier(&cfg.Telegram, *logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
	} else {
		ops = telegram.NewNoopNotifier(*logger)
		logger.Warn().Msg("telegram not configured; ops alerts disabled")
	}

	var ai adapter.AIServiceAdapter
	if cfg.AI.APIKey != "" {
		ai, err = aiAdapters.NewOpenAIAdapter(&cfg.AI)
		if err != nil {
			logger.Fatal().Err(err).Msg("ai adapter")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("ai adapter: openai-compatible")
	} else {
		ai = aiAdapters.NewNoopAdapter()
		logger.Warn().Msg("ai not configured; chat runs with fallback replies")
	}

	// ---- Auth / realtime ----
	authManager := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TTL)
	hub := ws.NewHub(authManager.VerifyToken, *logger)

	// ---- Workers ----
	notifyPool := worker.NewPool(cfg.Worker.NotificationWorkers, *logger)
	notifyPool.Start(ctx)
	defer notifyPool.Stop()

	// ---- Use cases ----
	notifUC := usecase.NewNotificationUseCase(
		mailer, ops, hub, notifyPool,
		cfg.Worker.RetryAttempts, cfg.Worker.RetryBackoff, *logger,
	)
	paymentUC := usecase.NewPaymentUseCase(
		paymentRepo, purchaseRepo, pricingRepo, userRepo,
		gateway, txManager, notifUC, cfg.HTTP.FrontendURL, *logger,
	)
	purchaseUC := usecase.NewPurchaseUseCase(purchaseRepo, pricingRepo, userRepo, notifUC, *logger)
	pricingUC := usecase.NewPricingUseCase(pricingRepo, *logger)
	chatUC := usecase.NewChatUseCase(chatRepo, ai, cfg.AI.SystemPrompt, cfg.AI.HistoryTokenLimit, *logger)

	// ---- Payment expiry sweep ----
	expiry := sched.NewPaymentExpiryWorker(
		cfg.Scheduler.PaymentExpiryInterval,
		cfg.Scheduler.PendingPaymentTTL,
		paymentUC, logger,
	)
	go func() { _ = expiry.Run(ctx) }()

	// ---- HTTP ----
	srv := api.NewServer(
		paymentUC, purchaseUC, pricingUC, chatUC,
		authManager, rateLimiter, hub.Handle,
		cfg.HTTP.CORSOrigins, logger,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
