package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appcart "github.com/shopcart/backend/internal/application/cart"
	"github.com/shopcart/backend/internal/infrastructure/bootstrap"
	"github.com/shopcart/backend/internal/infrastructure/cache"
	"github.com/shopcart/backend/internal/infrastructure/catalogue"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/connector"
	"github.com/shopcart/backend/internal/interfaces/http/handler"
	"github.com/shopcart/backend/internal/interfaces/http/router"
)

//	@title			Cart API
//	@version		1.0
//	@description	Shopping carts stored in Redis, enriched from the catalogue service

//	@host		localhost:8080
//	@BasePath	/
func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx := context.Background()

	rt, err := bootstrap.Init(ctx, config.ServiceCart)
	if err != nil {
		panic("Failed to initialize: " + err.Error())
	}
	cfg, log := rt.Config, rt.Logger

	// Redis connects in the background; requests fail until it is up
	hook := cache.NewConnectionHook(log)
	client := cache.NewRedisClient(cfg.Redis, hook)
	conn := connector.New("redis", cache.PingDialer(client),
		connector.WithRetryDelay(cfg.Connector.RetryDelay),
		connector.WithAttemptTimeout(cfg.Connector.AttemptTimeout),
		connector.WithLogger(log),
		connector.WithAttemptObserver(rt.Metrics.ConnectObserver("redis")),
	)
	hook.ReportTo(conn)
	conn.Start(ctx)

	rt.OnShutdown(func(context.Context) error { return client.Close() })
	rt.OnShutdown(conn.Stop)

	carts := cache.NewRedisCartRepository(client, cfg.Store.Timeout)
	products := catalogue.NewHTTPClient(cfg.Catalogue.BaseURL(), cfg.Catalogue.Timeout,
		catalogue.WithLogger(log),
		catalogue.WithOutcomeObserver(rt.Metrics.RecordCatalogueLookup),
	)
	service := appcart.NewService(carts, products,
		appcart.WithMaxConcurrency(cfg.Catalogue.MaxConcurrency),
		appcart.WithLogger(log),
	)

	log.Info("Catalogue client configured",
		zap.String("base_url", cfg.Catalogue.BaseURL()),
		zap.Duration("timeout", cfg.Catalogue.Timeout),
		zap.Int("max_concurrency", cfg.Catalogue.MaxConcurrency),
	)

	engine := rt.Engine()
	routes := router.NewRouter(engine).
		Register(handler.NewSystemHandler("redis", conn, rt.MetricsHandler()).Routes()).
		Register(handler.NewCartHandler(service).Routes()).
		Setup()
	for _, route := range routes {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	if err := rt.Serve(engine); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
