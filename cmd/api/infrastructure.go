package main

import (
	"log"

	"github.com/subculture-collective/adserve/config"
	"github.com/subculture-collective/adserve/pkg/database"
	redispkg "github.com/subculture-collective/adserve/pkg/redis"
)

// Infrastructure holds core infrastructure clients initialized at startup.
type Infrastructure struct {
	DB           *database.DB
	Redis        *redispkg.Client
	Config       *config.Config
	IsProduction bool
}

func initInfrastructure(cfg *config.Config) *Infrastructure {
	db, dbErr := database.NewDBWithTracing(&cfg.Database, cfg.Telemetry.Enabled)
	if dbErr != nil {
		log.Fatalf("Failed to connect to database: %v", dbErr)
	}

	redisClient, redisErr := redispkg.NewClient(&cfg.Redis)
	if redisErr != nil {
		log.Fatalf("Failed to connect to Redis: %v", redisErr)
	}

	isProduction := cfg.Server.GinMode == "release"

	return &Infrastructure{
		DB:           db,
		Redis:        redisClient,
		Config:       cfg,
		IsProduction: isProduction,
	}
}
