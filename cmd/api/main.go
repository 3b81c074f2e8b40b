package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/config"
	"github.com/subculture-collective/adserve/internal/cache"
	"github.com/subculture-collective/adserve/internal/clock"
	"github.com/subculture-collective/adserve/internal/repository"
	"github.com/subculture-collective/adserve/pkg/sentry"
	"github.com/subculture-collective/adserve/pkg/telemetry"
	"github.com/subculture-collective/adserve/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewStructuredLogger(utils.LogLevelInfo)
	utils.InitLogger(utils.LogLevelInfo)

	logger.Info("Starting ad-serving API", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	})

	if cfg.Sentry.Enabled {
		if err := sentry.Init(&cfg.Sentry); err != nil {
			log.Printf("WARNING: Failed to initialize Sentry: %v", err)
		}
		defer sentry.Close()
	}

	if cfg.Telemetry.Enabled {
		telemetryCfg := &telemetry.Config{
			Enabled:          cfg.Telemetry.Enabled,
			ServiceName:      cfg.Telemetry.ServiceName,
			ServiceVersion:   cfg.Telemetry.ServiceVersion,
			OTLPEndpoint:     cfg.Telemetry.OTLPEndpoint,
			Insecure:         cfg.Telemetry.Insecure,
			TracesSampleRate: cfg.Telemetry.TracesSampleRate,
			Environment:      cfg.Telemetry.Environment,
		}
		if err := telemetry.Init(telemetryCfg); err != nil {
			log.Printf("WARNING: Failed to initialize telemetry: %v", err)
		}
		defer func() {
			if err := telemetry.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	infra := initInfrastructure(cfg)

	ctx := context.Background()
	clockStore := repository.NewClockStore(infra.DB.Pool)
	clk, err := clock.New(ctx, clockStore)
	if err != nil {
		log.Fatalf("Failed to initialize clock: %v", err)
	}

	activeCache := cache.New(infra.Redis)

	repos := initRepositories(infra.DB.Pool, clockStore, clk)
	svcs := initServices(infra, repos, clk, activeCache)
	handlers := initHandlers(repos, svcs)

	// Reconcile the ActiveCache once at startup (spec §4.4: "on startup ...
	// ActiveCache is reconciled") and wire every subsequent clock advance to
	// do the same synchronously.
	if err := svcs.Reconciler.Reconcile(ctx, clk.Now()); err != nil {
		log.Printf("WARNING: initial active cache reconcile failed: %v", err)
	}
	clk.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) {
		if err := svcs.Reconciler.Reconcile(ctx, newDay); err != nil {
			log.Printf("active cache reconcile after clock advance failed: %v", err)
		}
	})

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	applyGlobalMiddleware(router, cfg, logger)
	registerRoutes(router, handlers, infra)

	schedulers := startSchedulers(svcs)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Server started", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	gracefulShutdown(srv, schedulers, infra)
}
