package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Fares      FaresConfig      `mapstructure:"fares"`
	Payment    PaymentConfig    `mapstructure:"payment"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	OTLPAddr    string  `mapstructure:"otlp_addr"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Enabled     bool    `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// SimulationConfig drives cmd/simulator. Intervals are in milliseconds.
type SimulationConfig struct {
	RideIntervalMs   int    `mapstructure:"ride_interval_ms"`
	TriderIntervalMs int    `mapstructure:"trider_interval_ms"`
	Seed             uint64 `mapstructure:"seed"`
}

func (s SimulationConfig) RideInterval() time.Duration {
	return time.Duration(s.RideIntervalMs) * time.Millisecond
}

func (s SimulationConfig) TriderInterval() time.Duration {
	return time.Duration(s.TriderIntervalMs) * time.Millisecond
}

// FaresConfig is the tariff in pesos.
type FaresConfig struct {
	BaseFare       float64 `mapstructure:"base_fare"`
	BaseDistanceKm float64 `mapstructure:"base_distance_km"`
	PerKm          float64 `mapstructure:"per_km"`
	ConvenienceFee float64 `mapstructure:"convenience_fee"`
	TodaBaseFare   float64 `mapstructure:"toda_base_fare"`
}

type PaymentConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	return load(service, viper.New())
}

func load(service string, v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:9002"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trigo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "trigo")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "trigo-settlement")
	v.SetDefault("simulation.ride_interval_ms", 30000)
	v.SetDefault("simulation.trider_interval_ms", 5000)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("fares.base_fare", 25.0)
	v.SetDefault("fares.base_distance_km", 2.0)
	v.SetDefault("fares.per_km", 10.0)
	v.SetDefault("fares.convenience_fee", 1.0)
	v.SetDefault("fares.toda_base_fare", 20.0)
	v.SetDefault("payment.webhook_secret", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRIGO_DATABASE_HOST → database.host
	v.SetEnvPrefix("TRIGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Sprintf("telemetry.sample_ratio must be 0-1, got %v", c.Telemetry.SampleRatio))
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if c.Simulation.RideIntervalMs < 100 {
		errs = append(errs, fmt.Sprintf("simulation.ride_interval_ms must be at least 100, got %d", c.Simulation.RideIntervalMs))
	}
	if c.Simulation.TriderIntervalMs < 100 {
		errs = append(errs, fmt.Sprintf("simulation.trider_interval_ms must be at least 100, got %d", c.Simulation.TriderIntervalMs))
	}
	if c.Fares.BaseFare < 0 || c.Fares.PerKm < 0 || c.Fares.ConvenienceFee < 0 || c.Fares.TodaBaseFare < 0 || c.Fares.BaseDistanceKm < 0 {
		errs = append(errs, "fares must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
