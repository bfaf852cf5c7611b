package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

var errNotConfigured = errors.New("not configured")

// readinessCheck tests one dependency. Required checks gate readiness;
// optional ones only degrade it.
type readinessCheck struct {
	name     string
	required bool
	run      func(ctx context.Context) (string, error)
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler runs every dispatch dependency check concurrently.
// A failed required check answers 503; a failed optional one reports "degraded".
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		var (
			mu       sync.Mutex
			results  = make(map[string]string, len(checks))
			failed   bool
			degraded bool
		)
		g, gctx := errgroup.WithContext(ctx)
		for _, chk := range checks {
			g.Go(func() error {
				detail, err := chk.run(gctx)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					results[chk.name] = detail
				case errors.Is(err, errNotConfigured):
					results[chk.name] = err.Error()
				default:
					results[chk.name] = "error: " + err.Error()
				}
				if err != nil {
					if chk.required {
						failed = true
					} else {
						degraded = true
					}
				}
				return nil
			})
		}
		_ = g.Wait()

		status, code := "ready", fiber.StatusOK
		switch {
		case failed:
			status, code = "not ready", fiber.StatusServiceUnavailable
		case degraded:
			status = "degraded"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	return []readinessCheck{
		{name: "database", required: true, run: func(ctx context.Context) (string, error) {
			if deps.DB == nil {
				return "", errNotConfigured
			}
			if err := deps.DB.Ping(ctx); err != nil {
				return "", err
			}
			return "ok", nil
		}},
		{name: "zones", required: true, run: func(ctx context.Context) (string, error) {
			n, err := deps.Zones.IndexedZones(ctx)
			if err != nil {
				return "", err
			}
			if n == 0 {
				return "", errors.New("no zones loaded, rides are unserviceable")
			}
			return fmt.Sprintf("ok (%d indexed)", n), nil
		}},
		{name: "cache", run: func(ctx context.Context) (string, error) {
			if deps.Cache == nil {
				return "", errNotConfigured
			}
			if err := deps.Cache.Ping(ctx); err != nil {
				return "", err
			}
			return "ok", nil
		}},
		{name: "nats", run: func(ctx context.Context) (string, error) {
			if deps.NATS == nil {
				return "", errNotConfigured
			}
			if !deps.NATS.IsConnected() {
				return "", errors.New("disconnected")
			}
			return "ok", nil
		}},
		// Wallet rides settle through ride.completed events on the bus.
		{name: "settlement", run: func(ctx context.Context) (string, error) {
			if deps.NATS == nil || !deps.NATS.IsConnected() {
				return "", errors.New("disabled, completed wallet rides will not settle")
			}
			return "ok", nil
		}},
		{name: "sharing", run: func(ctx context.Context) (string, error) {
			if deps.Shares == nil {
				return "", errors.New("disabled, no cache")
			}
			return "ok", nil
		}},
	}
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}
