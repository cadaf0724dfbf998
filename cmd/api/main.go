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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bookride/backend/api/routes"
	"github.com/bookride/backend/internal/adminlog"
	"github.com/bookride/backend/internal/bookings"
	"github.com/bookride/backend/internal/payments"
	stripewebhook "github.com/bookride/backend/internal/webhooks/stripe"
	"github.com/bookride/backend/pkg/config"
	"github.com/bookride/backend/pkg/db"
	"github.com/bookride/backend/pkg/logger"
	"github.com/bookride/backend/pkg/metrics"
	"github.com/bookride/backend/pkg/migrate"
	"github.com/bookride/backend/pkg/redis"
	pkgstripe "github.com/bookride/backend/pkg/stripe"
)

const (
	serviceName     = "bookride-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	_ = godotenv.Load()

	bootLogg := logger.New(logger.Options{ServiceName: serviceName})
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		bootLogg.Error(ctx, "config load failed", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server exited with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	stripeClient, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return fmt.Errorf("init stripe: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	bookingRepo := bookings.NewRepository(dbClient.DB())
	adminLogRepo := adminlog.NewRepository(dbClient.DB())
	eventRepo := stripewebhook.NewEventRepository(dbClient.DB())

	paymentService, err := payments.NewService(payments.ServiceParams{
		StripeClient: payments.NewIntentClient(stripeClient),
	})
	if err != nil {
		return fmt.Errorf("init payment service: %w", err)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		BookingRepo:       bookingRepo,
		EventRepo:         eventRepo,
		AdminLogRepo:      adminLogRepo,
		StripeClient:      stripewebhook.NewStripeClient(stripeClient),
		TransactionRunner: dbClient,
	})
	if err != nil {
		return fmt.Errorf("init webhook service: %w", err)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.IdempotencyTTL, "stripe-webhook")
	if err != nil {
		return fmt.Errorf("init webhook guard: %w", err)
	}

	router := routes.New(routes.Dependencies{
		Logger:              logg,
		DB:                  dbClient,
		Redis:               redisClient,
		PaymentService:      paymentService,
		WebhookService:      webhookService,
		WebhookGuard:        webhookGuard,
		StripeSigningSecret: stripeClient.SigningSecret(),
		Metrics:             paymentMetrics,
		Registry:            registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logg.Info(ctx, "server stopped")
	return nil
}
