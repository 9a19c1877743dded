package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appcatalogue "github.com/shopcart/backend/internal/application/catalogue"
	"github.com/shopcart/backend/internal/infrastructure/bootstrap"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/connector"
	"github.com/shopcart/backend/internal/infrastructure/persistence"
	"github.com/shopcart/backend/internal/interfaces/http/handler"
	"github.com/shopcart/backend/internal/interfaces/http/router"
)

//	@title			Catalogue API
//	@version		1.0
//	@description	Product catalogue stored in MongoDB

//	@host		localhost:8080
//	@BasePath	/
func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap.Init(ctx, config.ServiceCatalogue)
	if err != nil {
		panic("Failed to initialize: " + err.Error())
	}
	cfg, log := rt.Config, rt.Logger

	// MongoDB connects in the background; requests fail until it is up
	store := persistence.NewMongoStore(cfg.Mongo)
	conn := connector.New("mongo", store.Dial,
		connector.WithRetryDelay(cfg.Connector.RetryDelay),
		connector.WithAttemptTimeout(cfg.Connector.AttemptTimeout),
		connector.WithLogger(log),
		connector.WithAttemptObserver(rt.Metrics.ConnectObserver("mongo")),
	)
	conn.Start(ctx)

	rt.OnShutdown(store.Close)
	rt.OnShutdown(conn.Stop)

	repo := persistence.NewMongoProductRepository(store, cfg.Store.Timeout)
	go func() {
		select {
		case <-conn.Ready():
		case <-ctx.Done():
			return
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to create product indexes", zap.Error(err))
			return
		}
		log.Info("Product indexes ready")
	}()

	service := appcatalogue.NewProductService(repo, log)

	engine := rt.Engine()
	routes := router.NewRouter(engine).
		Register(handler.NewSystemHandler("mongo", conn, rt.MetricsHandler()).Routes()).
		Register(handler.NewCatalogueHandler(service).Routes()).
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
