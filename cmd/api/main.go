package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lemonhouse/storefront/api/routes"
	"github.com/lemonhouse/storefront/internal/accounts"
	"github.com/lemonhouse/storefront/internal/addresses"
	"github.com/lemonhouse/storefront/internal/cart"
	"github.com/lemonhouse/storefront/internal/catalog"
	"github.com/lemonhouse/storefront/internal/feedback"
	"github.com/lemonhouse/storefront/internal/orders"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/pkg/config"
	"github.com/lemonhouse/storefront/pkg/instance"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/metrics"
	"github.com/lemonhouse/storefront/pkg/redis"
	"github.com/lemonhouse/storefront/pkg/sheets"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gateway, err := sheets.NewClient(cfg.Sheets,
		sheets.WithLogger(logg),
		sheets.WithMetrics(metrics.NewGatewayMetrics(registry)),
	)
	if err != nil {
		logg.Error(ctx, "failed to create sheets client", err)
		os.Exit(1)
	}

	loc, err := cfg.Orders.Location()
	if err != nil {
		logg.Error(ctx, "failed to resolve order timezone", err)
		os.Exit(1)
	}

	sessionStore, err := session.NewRedisStore(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(ctx, "failed to create session store", err)
		os.Exit(1)
	}
	sessionService, err := session.NewService(sessionStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to create session service", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(gateway, sessionService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create account service", err)
		os.Exit(1)
	}

	addressService, err := addresses.NewService(gateway, sessionService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create address service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(gateway, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(gateway, sessionService, loc, logg)
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	draftStore, err := cart.NewRedisDraftStore(redisClient, cfg.Orders.DraftTTL)
	if err != nil {
		logg.Error(ctx, "failed to create draft store", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.Deps{
		Drafts:      draftStore,
		InFlight:    redisClient,
		Sessions:    sessionService,
		Catalog:     catalogService,
		Orders:      orderService,
		Messaging:   cfg.Messaging,
		InFlightTTL: cfg.Orders.InFlightTTL,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(gateway, sessionService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create feedback service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			registry,
			sessionService,
			accountService,
			addressService,
			catalogService,
			cartService,
			orderService,
			feedbackService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(srvCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(srvCtx, "graceful shutdown failed", err)
		}
	}
}
