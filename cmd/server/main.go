package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/swiftdrop/dispatch/internal/api"
	"github.com/swiftdrop/dispatch/internal/api/handler"
	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/service"
	"github.com/swiftdrop/dispatch/internal/infrastructure/config"
	mongodb "github.com/swiftdrop/dispatch/internal/infrastructure/db/mongo"
	redisdb "github.com/swiftdrop/dispatch/internal/infrastructure/db/redis"
	"github.com/swiftdrop/dispatch/internal/infrastructure/queue"
	"github.com/swiftdrop/dispatch/internal/infrastructure/routing"
	"github.com/swiftdrop/dispatch/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        SwiftDrop Dispatch API
// @version      1.0
// @description  Point-to-point delivery orders: estimation, pricing, task grouping and driver fulfillment.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	orderRepo := mongodb.NewOrderRepository(db)
	groupRepo := mongodb.NewTaskGroupRepository(db)
	driverRepo := mongodb.NewDriverRepository(db)
	pricingRepo := mongodb.NewPricingRepository(db)
	evidenceRepo := mongodb.NewEvidenceRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"orders":      orderRepo.EnsureIndexes,
		"task_groups": groupRepo.EnsureIndexes,
		"drivers":     driverRepo.EnsureIndexes,
		"evidence":    evidenceRepo.EnsureIndexes,
		"users":       authRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}
	if err := pricingRepo.SeedIfEmpty(ctx, defaultZones()); err != nil {
		log.Fatal().Err(err).Msg("pricing seed failed")
	}

	routeCache := redisdb.NewRouteCache(rdb, cfg.Routing.CacheTTL)
	router := routing.NewClient(cfg.Routing.BaseURL)

	// --- Core services ---
	estimateSvc := service.NewEstimateService(pricingRepo, router, routeCache, cfg.Dispatch.MaxMiles, log)
	orderSvc := service.NewOrderService(orderRepo, estimateSvc, log)
	groupingSvc := service.NewGroupingService(groupRepo, orderRepo, driverRepo, log)
	taskSvc := service.NewTaskService(groupRepo, orderRepo, driverRepo, evidenceRepo, log)
	driverSvc := service.NewDriverService(driverRepo, groupRepo, log)
	authSvc := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour, log)

	// --- Payment event workers ---
	dispatcher := queue.NewDispatcher(cfg.Dispatch.PaymentWorkers, groupingSvc, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Health:    handler.NewHealthHandler(),
		Readiness: handler.NewReadinessHandler(db, rdb),
		Estimate:  handler.NewEstimateHandler(estimateSvc),
		Order:     handler.NewOrderHandler(orderSvc),
		Task:      handler.NewTaskHandler(taskSvc, evidenceRepo),
		Group:     handler.NewGroupHandler(groupingSvc, groupRepo),
		Driver:    handler.NewDriverHandler(driverSvc),
		Payment:   handler.NewPaymentHandler(dispatcher),
	}, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("dispatch server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// defaultZones is the pricing configuration installed on first boot. Ops
// replace it through the pricing collection once real coverage is defined.
func defaultZones() []domain.Zone {
	return []domain.Zone{
		{
			Name: "metro-core",
			Box: domain.BoundingBox{
				MinLat: 40.55, MaxLat: 40.92,
				MinLng: -74.25, MaxLng: -73.70,
			},
			Bands: []domain.PriceBand{
				{MinMiles: 0, MaxMiles: 2, BaseUSD: 9},
				{MinMiles: 2, MaxMiles: 5, BaseUSD: 14},
				{MinMiles: 5, MaxMiles: 9, BaseUSD: 18},
				{MinMiles: 9, MaxMiles: 12, BaseUSD: 24},
			},
		},
	}
}
