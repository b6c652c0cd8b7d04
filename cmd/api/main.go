package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/poornima-canteen/canteen-backend/api/routes"
	cartsvc "github.com/poornima-canteen/canteen-backend/internal/cart"
	checkoutsvc "github.com/poornima-canteen/canteen-backend/internal/checkout"
	identitysvc "github.com/poornima-canteen/canteen-backend/internal/identity"
	menusvc "github.com/poornima-canteen/canteen-backend/internal/menu"
	notifysvc "github.com/poornima-canteen/canteen-backend/internal/notify"
	"github.com/poornima-canteen/canteen-backend/pkg/auth/session"
	"github.com/poornima-canteen/canteen-backend/pkg/config"
	"github.com/poornima-canteen/canteen-backend/pkg/db"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
	"github.com/poornima-canteen/canteen-backend/pkg/metrics"
	"github.com/poornima-canteen/canteen-backend/pkg/migrate"
	"github.com/poornima-canteen/canteen-backend/pkg/payment"
	"github.com/poornima-canteen/canteen-backend/pkg/redis"
)

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	menuRepo, err := menusvc.NewRepository(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu repository", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.SeedMenu {
		if err := menusvc.Seed(context.Background(), menuRepo, logg); err != nil {
			logg.Error(context.Background(), "failed to seed menu", err)
			os.Exit(1)
		}
	}

	menuService, err := menusvc.NewService(menuRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}

	notifyService, err := notifysvc.NewService(redisClient, cfg.Notify)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(redisClient, redisClient, menuService, notifyService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	var provider identitysvc.Provider
	if cfg.OAuth.ClientID != "" {
		provider, err = identitysvc.NewGoogleProvider(cfg.OAuth)
		if err != nil {
			logg.Error(context.Background(), "failed to create oauth provider", err)
			os.Exit(1)
		}
	}

	identityService, err := identitysvc.NewService(
		redisClient,
		sessionManager,
		provider,
		identitysvc.NewLogMailer(logg),
		identitysvc.NewGate(),
		checkoutMetrics,
		logg,
		cfg.App,
		cfg.JWT,
		cfg.Auth,
		cfg.AuthRateLimit,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		checkoutsvc.NewLazyProvider(payment.NewLoader(cfg.Payment)),
		notifyService,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient,
			identityService, menuService, cartService, checkoutService, notifyService,
			registry,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(timeoutCtx)
		err = multierr.Append(err, dbClient.Close())
		err = multierr.Append(err, redisClient.Close())
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
