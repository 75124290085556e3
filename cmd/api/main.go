package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/smehta-dev/storefront-backend/api/controllers"
	"github.com/smehta-dev/storefront-backend/api/routes"
	cartsvc "github.com/smehta-dev/storefront-backend/internal/cart"
	"github.com/smehta-dev/storefront-backend/internal/checkout"
	"github.com/smehta-dev/storefront-backend/internal/orders"
	"github.com/smehta-dev/storefront-backend/pkg/config"
	"github.com/smehta-dev/storefront-backend/pkg/db"
	"github.com/smehta-dev/storefront-backend/pkg/gateway"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/metrics"
	"github.com/smehta-dev/storefront-backend/pkg/redis"
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

	persister, pingers, cleanup, err := buildPersistence(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cart persistence", err)
		os.Exit(1)
	}
	defer cleanup()

	gatewayClient, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}
	pingers["gateway"] = gatewayClient

	carts, err := cartsvc.NewRegistry(persister, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart registry", err)
		os.Exit(1)
	}

	rules, err := checkout.RulesFromConfig(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "invalid pricing config", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	mtr := metrics.NewHTTPMetrics(promRegistry)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		API:     gatewayClient,
		Carts:   carts,
		Rules:   rules,
		Logger:  logg,
		Metrics: mtr,
	})
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
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Persistence.Backend,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Metrics:  mtr,
			Registry: promRegistry,
			Carts:    carts,
			Gateway:  gatewayClient,
			Orders:   ordersSvc,
			Pingers:  pingers,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildPersistence wires the cart store backend selected by configuration.
// The mirror backend writes to redis and the database together so a cache
// flush never loses carts.
func buildPersistence(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cartsvc.Persister, map[string]controllers.Pinger, func(), error) {
	pingers := map[string]controllers.Pinger{}
	cleanup := func() {}

	switch cfg.Persistence.Backend {
	case config.PersistenceMemory:
		return cartsvc.NewMemoryPersister(), pingers, cleanup, nil

	case config.PersistenceRedis:
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, cleanup, err
		}
		persister, err := cartsvc.NewRedisPersister(redisClient, cfg.Persistence.TTL)
		if err != nil {
			return nil, nil, cleanup, err
		}
		pingers["redis"] = redisClient
		return persister, pingers, closeLogged(logg, "redis", redisClient.Close), nil

	case config.PersistenceDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, cleanup, err
		}
		persister, err := cartsvc.NewDBPersister(dbClient.DB())
		if err != nil {
			return nil, nil, cleanup, err
		}
		pingers["db"] = dbClient
		return persister, pingers, closeLogged(logg, "db", dbClient.Close), nil

	case config.PersistenceMirror:
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, cleanup, err
		}
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, cleanup, err
		}
		redisPersister, err := cartsvc.NewRedisPersister(redisClient, cfg.Persistence.TTL)
		if err != nil {
			return nil, nil, cleanup, err
		}
		dbPersister, err := cartsvc.NewDBPersister(dbClient.DB())
		if err != nil {
			return nil, nil, cleanup, err
		}
		pingers["redis"] = redisClient
		pingers["db"] = dbClient
		closeRedis := closeLogged(logg, "redis", redisClient.Close)
		closeDB := closeLogged(logg, "db", dbClient.Close)
		return cartsvc.NewMirrorPersister(redisPersister, dbPersister), pingers, func() {
			closeRedis()
			closeDB()
		}, nil
	}

	return nil, nil, cleanup, fmt.Errorf("unknown cart backend %q", cfg.Persistence.Backend)
}

func closeLogged(logg *logger.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			logg.Error(context.Background(), "error closing "+name, err)
		}
	}
}
