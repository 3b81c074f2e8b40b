package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/internal/clock"
	"github.com/subculture-collective/adserve/internal/repository"
)

// Repositories holds all database repository instances.
type Repositories struct {
	Clock      *repository.ClockStore
	Campaign   *repository.CampaignStore
	Profile    *repository.ProfileStore
	Event      *repository.EventStore
	Moderation *repository.ModerationStore
}

// initRepositories wires every repository to the shared pool. CampaignStore
// needs the already-constructed clock Service to enforce the
// frozen-after-start_date mutability rule (spec §4.3); clockStore is the
// same store that service was built from in main, reused here rather than
// opening a second handle.
func initRepositories(pool *pgxpool.Pool, clockStore *repository.ClockStore, clk *clock.Service) *Repositories {
	return &Repositories{
		Clock:      clockStore,
		Campaign:   repository.NewCampaignStore(pool, clk),
		Profile:    repository.NewProfileStore(pool),
		Event:      repository.NewEventStore(pool),
		Moderation: repository.NewModerationStore(pool),
	}
}
