package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("trigo-test", viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Simulation.RideInterval() != 30*time.Second || cfg.Simulation.TriderInterval() != 5*time.Second {
		t.Errorf("unexpected simulation intervals: %+v", cfg.Simulation)
	}
	if cfg.Fares.BaseFare != 25 || cfg.Fares.ConvenienceFee != 1 || cfg.Fares.TodaBaseFare != 20 {
		t.Errorf("unexpected fares: %+v", cfg.Fares)
	}
	if cfg.Telemetry.ServiceName != "trigo-test" {
		t.Errorf("expected service name trigo-test, got %s", cfg.Telemetry.ServiceName)
	}
	if got := cfg.Database.DSN(); got != "postgres://trigo:@localhost:5432/trigo?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRIGO_SERVER_PORT", "9090")
	t.Setenv("TRIGO_PAYMENT_WEBHOOK_SECRET", "whsk")

	cfg, err := load("trigo-test", viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Payment.WebhookSecret != "whsk" {
		t.Errorf("expected webhook secret from env, got %q", cfg.Payment.WebhookSecret)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{Port: 0},
		Telemetry:  TelemetryConfig{SampleRatio: 2},
		Simulation: SimulationConfig{RideIntervalMs: 10, TriderIntervalMs: 10},
		Fares:      FaresConfig{PerKm: -1},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "nats.url", "sample_ratio", "task_queue", "ride_interval_ms", "fares"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
