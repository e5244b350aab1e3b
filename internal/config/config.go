package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Worker    WorkerConfig
	Upstream  UpstreamConfig
	Engine    EngineConfig
	Polling   PollingConfig
	DB        DatabaseConfig
	Retention RetentionConfig
	Logging   LoggingConfig
}

type GRPCConfig struct {
	Port int
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

// UpstreamConfig points at the dashboard data API. An empty URL runs the
// service on embedded seed data only.
type UpstreamConfig struct {
	URL     string
	Timeout time.Duration
}

// EngineConfig drives the built-in risk engine, used as the data source when
// no upstream URL is set.
type EngineConfig struct {
	Enabled       bool
	ResolutionDeg float64
	HorizonHours  int
	Threshold     float64
	Seed          int64
}

type PollingConfig struct {
	Fleet       time.Duration
	Threats     time.Duration
	Predictions time.Duration
	Map         time.Duration // land risk + server collisions
}

type DatabaseConfig struct {
	Path string
}

type RetentionConfig struct {
	Collisions    time.Duration
	PurgeSchedule string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Upstream: UpstreamConfig{
			URL:     getEnv("UPSTREAM_API_URL", ""),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Engine: EngineConfig{
			Enabled:       getEnvBool("ENGINE_ENABLED", false),
			ResolutionDeg: getEnvFloat("ENGINE_RESOLUTION_DEG", 0.05),
			HorizonHours:  getEnvInt("ENGINE_HORIZON_HOURS", 6),
			Threshold:     getEnvFloat("ENGINE_THREAT_THRESHOLD", 0.44),
			Seed:          int64(getEnvInt("ENGINE_SEED", 42)),
		},
		Polling: PollingConfig{
			Fleet:       getEnvDuration("FLEET_POLL_INTERVAL", 15*time.Second),
			Threats:     getEnvDuration("THREATS_POLL_INTERVAL", 30*time.Second),
			Predictions: getEnvDuration("PREDICTIONS_POLL_INTERVAL", 60*time.Second),
			Map:         getEnvDuration("MAP_POLL_INTERVAL", 5*time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/zerostrike.db"),
		},
		Retention: RetentionConfig{
			Collisions:    getEnvDuration("COLLISION_RETENTION", 72*time.Hour),
			PurgeSchedule: getEnv("COLLISION_PURGE_SCHEDULE", "@every 1h"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Upstream.URL != "" {
		u, err := url.Parse(c.Upstream.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid upstream API URL: %q", c.Upstream.URL)
		}
	}

	if c.Engine.Enabled {
		if c.Engine.ResolutionDeg < 0.01 || c.Engine.ResolutionDeg > 1 {
			return fmt.Errorf("engine resolution must be between 0.01 and 1 degree, got %v", c.Engine.ResolutionDeg)
		}
		if c.Engine.HorizonHours < 1 || c.Engine.HorizonHours > 48 {
			return fmt.Errorf("engine horizon must be between 1 and 48 hours, got %d", c.Engine.HorizonHours)
		}
		if c.Engine.Threshold < 0 || c.Engine.Threshold > 1 {
			return fmt.Errorf("engine threat threshold must be between 0 and 1, got %v", c.Engine.Threshold)
		}
	}

	intervals := map[string]time.Duration{
		"fleet":       c.Polling.Fleet,
		"threats":     c.Polling.Threats,
		"predictions": c.Polling.Predictions,
		"map":         c.Polling.Map,
	}
	for name, d := range intervals {
		if d < time.Second {
			return fmt.Errorf("%s poll interval must be at least 1 second", name)
		}
	}

	if c.Retention.Collisions <= 0 {
		return fmt.Errorf("collision retention must be positive")
	}
	if _, err := cron.ParseStandard(c.Retention.PurgeSchedule); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", c.Retention.PurgeSchedule, err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
