// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "yieldledger/internal"
	"yieldledger/internal/scheduler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		application.Logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	cfg := application.Config

	sched, err := scheduler.New(application.Logger, application.Metrics,
		scheduler.Job{
			Name: "distribution",
			Spec: cfg.DistributionSpec,
			Run: func(ctx context.Context) error {
				// A full batch means more investments are due; keep sweeping.
				for {
					report, err := application.Distributor.RunDistribution(ctx)
					if err != nil {
						return err
					}
					if !report.HasMore || report.Credited+report.Completed == 0 {
						return nil
					}
				}
			},
		},
		scheduler.Job{
			Name: "deposit_expiry",
			Spec: cfg.ExpirySpec,
			Run: func(ctx context.Context) error {
				_, err := application.Deposits.ExpireStale(ctx)
				return err
			},
		},
	)
	if err != nil {
		application.Logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	sched.Start()
	application.Logger.Info("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	application.Logger.Info("Stopping worker...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	sched.Stop(shutdownCtx)
	if err := application.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error("Application shutdown failed", "error", err)
		os.Exit(1)
	}
	application.Logger.Info("Worker gracefully stopped.")
}
