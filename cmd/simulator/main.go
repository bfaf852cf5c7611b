package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	natsadapter "github.com/samirrijal/trigo/internal/adapters/nats"
	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/core/usecases"
	"github.com/samirrijal/trigo/internal/pkg/config"
	"github.com/samirrijal/trigo/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("trigo-simulator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("trigo-simulator", cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, positions will not be broadcast", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	zoneRepo := postgres.NewZoneRepo(db)
	triderRepo := postgres.NewTriderRepo(db)
	fares := usecases.NewFareCalculator(usecases.FareTariff{
		BaseFare:       cfg.Fares.BaseFare,
		BaseDistanceKm: cfg.Fares.BaseDistanceKm,
		PerKm:          cfg.Fares.PerKm,
		ConvenienceFee: cfg.Fares.ConvenienceFee,
		TodaBaseFare:   cfg.Fares.TodaBaseFare,
	})
	rides := usecases.NewRideService(postgres.NewRideRepo(db), triderRepo,
		usecases.NewZoneService(zoneRepo, nil), fares, publisher)
	sim := usecases.NewSimulationService(zoneRepo, triderRepo, rides, fares, publisher, cfg.Simulation.Seed)

	slog.Info("simulator starting",
		"trider_interval", cfg.Simulation.TriderInterval(),
		"ride_interval", cfg.Simulation.RideInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(gctx, cfg.Simulation.TriderInterval(), func(ctx context.Context) error {
			report, err := sim.StepTriders(ctx)
			if err != nil {
				return err
			}
			slog.Debug("triders stepped", "advanced", report.Advanced, "roamed", report.Roamed,
				"reset", report.Reset, "skipped", report.Skipped)
			return nil
		})
	})
	g.Go(func() error {
		return every(gctx, cfg.Simulation.RideInterval(), func(ctx context.Context) error {
			_, err := sim.SpawnRide(ctx)
			if errors.Is(err, domain.ErrUnserviceable) {
				slog.Warn("no zones loaded, run seed first")
				return nil
			}
			return err
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("simulator: %v", err)
	}
	slog.Info("simulator stopped")
}

// every runs fn on each tick until ctx ends. A failed tick is logged and
// the loop carries on.
func every(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				slog.Error("simulation tick failed", "interval", interval, "error", err)
			}
		}
	}
}
