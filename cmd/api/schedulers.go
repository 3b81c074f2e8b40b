package main

import (
	"context"

	"github.com/subculture-collective/adserve/internal/scheduler"
)

// SchedulerGroup holds all background scheduler instances for graceful shutdown.
type SchedulerGroup struct {
	Reconcile *scheduler.ReconcileScheduler
}

func startSchedulers(svcs *Services) *SchedulerGroup {
	sg := &SchedulerGroup{}

	// Backstop reconcile of the ActiveCache every 5 minutes, on top of the
	// synchronous reconcile clock.Service.OnAdvance already triggers.
	sg.Reconcile = scheduler.NewReconcileScheduler(svcs.Reconciler, svcs.Clock, 5)
	go sg.Reconcile.Start(context.Background())

	return sg
}
