package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mateovidal/catalogbase-backend/api/middleware"
	"github.com/mateovidal/catalogbase-backend/api/routes"
	authsvc "github.com/mateovidal/catalogbase-backend/internal/auth"
	"github.com/mateovidal/catalogbase-backend/internal/catalogs"
	"github.com/mateovidal/catalogbase-backend/internal/categories"
	"github.com/mateovidal/catalogbase-backend/internal/onboarding"
	"github.com/mateovidal/catalogbase-backend/internal/products"
	"github.com/mateovidal/catalogbase-backend/internal/storefront"
	"github.com/mateovidal/catalogbase-backend/internal/webhooks/payments"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/mailer"
	"github.com/mateovidal/catalogbase-backend/pkg/metrics"
	"github.com/mateovidal/catalogbase-backend/pkg/migrate"
	"github.com/mateovidal/catalogbase-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional: without it the auth throttles are simply absent.
	var limiter middleware.SlidingWindowStore
	if cfg.Redis.Configured() {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		limiter = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	authMetrics := metrics.NewAuthMetrics(prometheus.DefaultRegisterer)
	sender := mailer.NewLogSender(cfg.Mail, logg)

	authService := authsvc.NewService(authsvc.ServiceParams{
		DB:     dbClient,
		Sender: sender,
		Config: cfg,
		Logger: logg,
	})
	catalogService := catalogs.NewService(catalogs.ServiceParams{DB: dbClient, Logger: logg})
	onboardingService := onboarding.NewService(onboarding.ServiceParams{
		DB:       dbClient,
		Resolver: catalogService,
		Logger:   logg,
	})
	categoryService := categories.NewService(categories.ServiceParams{DB: dbClient, Logger: logg})
	productService := products.NewService(products.ServiceParams{DB: dbClient, Logger: logg})
	storefrontService := storefront.NewService(storefront.ServiceParams{DB: dbClient, Logger: logg})
	paymentsWebhook := payments.NewService(payments.ServiceParams{
		DB:      dbClient,
		Secret:  cfg.Payments.WebhookSecret,
		Logger:  logg,
		Metrics: authMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, limiter, authMetrics,
			authService, catalogService, onboardingService,
			categoryService, productService, storefrontService,
			paymentsWebhook,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
