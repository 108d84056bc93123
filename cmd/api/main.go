package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/staybook-backend/api/routes"
	"github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/internal/coupons"
	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/internal/payments"
	"github.com/angelmondragon/staybook-backend/internal/rewards"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	razorpaywebhook "github.com/angelmondragon/staybook-backend/internal/webhooks/razorpay"
	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/metrics"
	"github.com/angelmondragon/staybook-backend/pkg/migrate"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/razorpay"
	"github.com/angelmondragon/staybook-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	bootCtx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(bootCtx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(bootCtx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		logg.Error(bootCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing redis", err)
		}
	}()

	gatewayClient, err := razorpay.NewClient(bootCtx, cfg.Razorpay, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap razorpay", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	ledger := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	walletService, err := wallet.NewService(wallet.NewRepository(gormDB), dbClient, cfg.Wallet)
	requireService(bootCtx, logg, "wallet", err)

	couponService, err := coupons.NewService(coupons.NewRepository(gormDB))
	requireService(bootCtx, logg, "coupons", err)

	bookingRepo := bookings.NewRepository(gormDB)
	bookingService, err := bookings.NewService(bookingRepo, dbClient, outboxService, walletService, couponService, cfg.Booking, ledger)
	requireService(bootCtx, logg, "bookings", err)

	paymentService, err := payments.NewService(payments.NewRepository(gormDB), bookingRepo, dbClient, outboxService, gatewayClient, ledger, logg)
	requireService(bootCtx, logg, "payments", err)

	financeService, err := finance.NewService(finance.NewRepository(gormDB), dbClient, outboxService, cfg.Finance, ledger)
	requireService(bootCtx, logg, "finance", err)

	rewardsService, err := rewards.NewService(rewards.NewRepository(gormDB), walletService, couponService)
	requireService(bootCtx, logg, "rewards", err)

	webhookService, err := razorpaywebhook.NewService(paymentService, ledger)
	requireService(bootCtx, logg, "razorpay webhook", err)

	webhookGuard, err := razorpaywebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.WebhookIdempotencyTTL)
	requireService(bootCtx, logg, "razorpay webhook guard", err)

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	server := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.App.Port),
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			bookingService,
			paymentService,
			financeService,
			rewardsService,
			walletService,
			webhookService,
			gatewayClient,
			webhookGuard,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, fmt.Sprintf("starting api on %s", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api graceful shutdown failed", err)
		}
	}
	logg.Info(ctx, "api shutting down gracefully")
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("failed to create %s service", name), err)
	os.Exit(1)
}
