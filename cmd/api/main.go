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
	"go.uber.org/multierr"

	"github.com/angelmondragon/streetlink-backend/api/routes"
	"github.com/angelmondragon/streetlink-backend/internal/auth"
	"github.com/angelmondragon/streetlink-backend/internal/catalog"
	"github.com/angelmondragon/streetlink-backend/internal/deliveries"
	"github.com/angelmondragon/streetlink-backend/internal/orders"
	"github.com/angelmondragon/streetlink-backend/internal/pricing"
	"github.com/angelmondragon/streetlink-backend/internal/users"
	"github.com/angelmondragon/streetlink-backend/pkg/config"
	"github.com/angelmondragon/streetlink-backend/pkg/db"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
	"github.com/angelmondragon/streetlink-backend/pkg/logger"
	"github.com/angelmondragon/streetlink-backend/pkg/metrics"
	"github.com/angelmondragon/streetlink-backend/pkg/migrate"
	"github.com/angelmondragon/streetlink-backend/pkg/redis"
)

const shutdownGrace = 10 * time.Second

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

	verifier, err := buildVerifier(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create token verifier", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	deliveriesRepo := deliveries.NewRepository(dbClient.DB())

	authService, err := auth.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	calc, err := pricing.NewCalculator(cfg.Delivery)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery pricing", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(deliveriesRepo, ordersRepo, calc)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, catalogRepo, usersRepo, dbClient, deliveryService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Cfg:         cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Metrics:     metrics.NewHTTPMetrics(),
			Verifier:    verifier,
			UsersRepo:   usersRepo,
			AuthSvc:     authService,
			CatalogSvc:  catalogService,
			OrdersSvc:   ordersService,
			DeliverySvc: deliveryService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "forced shutdown", err)
		}
	}

	closeErr := multierr.Append(redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// buildVerifier picks the identity backend. The dev fallback decodes tokens
// without checking signatures and never activates outside the dev environment.
func buildVerifier(ctx context.Context, cfg *config.Config, logg *logger.Logger) (identity.Verifier, error) {
	if cfg.App.IsDev() && cfg.FeatureFlags.DevAuthFallback {
		logg.Warn(ctx, "using unverified dev token fallback")
		return identity.DevVerifier{}, nil
	}
	return identity.NewFirebaseVerifier(ctx, cfg.Firebase)
}
