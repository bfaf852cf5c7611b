package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/trigo/internal/adapters/http"
	natsadapter "github.com/samirrijal/trigo/internal/adapters/nats"
	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/adapters/valkey"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/core/usecases"
	"github.com/samirrijal/trigo/internal/pkg/config"
	"github.com/samirrijal/trigo/internal/pkg/logging"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
	"github.com/samirrijal/trigo/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("trigo-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("trigo-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache
	var cachePort ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, boundaries are uncached and sharing is disabled", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events will not be published", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	// Repos
	zoneRepo := postgres.NewZoneRepo(db)
	triderRepo := postgres.NewTriderRepo(db)
	rideRepo := postgres.NewRideRepo(db)
	walletRepo := postgres.NewWalletRepo(db)

	// Use cases
	zoneSvc := usecases.NewZoneService(zoneRepo, cachePort)
	if err := zoneSvc.Refresh(ctx); err != nil {
		slog.Warn("zone index warmup failed", "error", err)
	}
	fares := usecases.NewFareCalculator(usecases.FareTariff{
		BaseFare:       cfg.Fares.BaseFare,
		BaseDistanceKm: cfg.Fares.BaseDistanceKm,
		PerKm:          cfg.Fares.PerKm,
		ConvenienceFee: cfg.Fares.ConvenienceFee,
		TodaBaseFare:   cfg.Fares.TodaBaseFare,
	})
	rideSvc := usecases.NewRideService(rideRepo, triderRepo, zoneSvc, fares, publisher)
	walletSvc := usecases.NewWalletService(walletRepo)
	if cfg.Payment.WebhookSecret == "" {
		slog.Warn("payment.webhook_secret is empty, every webhook will be rejected")
	}

	deps := &http.Dependencies{
		Zones:   zoneSvc,
		Triders: usecases.NewTriderService(triderRepo, zoneRepo, publisher),
		Rides:   rideSvc,
		Fares:   fares,
		Wallets: walletSvc,
		Payments: usecases.NewPaymentService(cfg.Payment.WebhookSecret, walletSvc, rideSvc,
			postgres.NewSubscriptionRepo(db), postgres.NewWebhookEventRepo(db)),
		Chat:  usecases.NewChatService(rideRepo, publisher),
		NATS:  natsConn,
		DB:    db,
		Cache: cache,
	}
	if cachePort != nil {
		deps.Shares = usecases.NewShareService(rideRepo, cachePort)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Trigo Dispatch API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ", "),
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Paymongo-Signature",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
