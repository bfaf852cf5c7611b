package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/trigo/internal/adapters/nats"
	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/usecases"
	"github.com/samirrijal/trigo/internal/pkg/config"
	"github.com/samirrijal/trigo/internal/pkg/logging"
	"github.com/samirrijal/trigo/internal/workflows"
)

func main() {
	cfg, err := config.Load("trigo-settler")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup("trigo-settler", cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Activities run against the same services the API uses.
	triderRepo := postgres.NewTriderRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	rides := usecases.NewRideService(postgres.NewRideRepo(db), triderRepo,
		usecases.NewZoneService(zoneRepo, nil), usecases.NewFareCalculator(usecases.DefaultTariff()), nil)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SettlementWorkflow)
	w.RegisterActivity(&workflows.SettlementActivities{
		Wallets: usecases.NewWalletService(postgres.NewWalletRepo(db)),
		Rides:   rides,
	})
	if err := w.Start(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	defer w.Stop()

	// Completed rides arrive over JetStream and start one saga each.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	starter := workflows.NewStarter(c, cfg.Temporal.TaskQueue)
	err = sub.SubscribeRideEvents(ctx, domain.RideEventCompleted, func(ctx context.Context, ev *domain.RideEvent) error {
		return starter.StartSettlement(ctx, &ev.Ride)
	})
	if err != nil {
		log.Fatalf("subscribe completed rides: %v", err)
	}

	slog.Info("settler started", "task_queue", cfg.Temporal.TaskQueue)
	<-ctx.Done()
	slog.Info("settler stopping")
}
