package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds process configuration loaded from environment variables.
type Config struct {
	ServerPort       string
	CallupConfigPath string
	RedisURL         string
	DatabaseURL      string
	RabbitMQURL      string
	RateLimitBackend string
	RelayAuthSecret  string
	FloodLimitRate   string
	AllowedOrigins   []string
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// Rate limit backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		CallupConfigPath: getEnv("CALLUP_CONFIG", "config.yml"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RateLimitBackend: getEnv("RATELIMIT_BACKEND", BackendRedis),
		RelayAuthSecret:  getEnv("RELAY_AUTH_SECRET", ""),
		FloodLimitRate:   getEnv("FLOOD_LIMIT_RATE", "10-S"),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", nil),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.RelayAuthSecret == "" {
		return nil, fmt.Errorf("RELAY_AUTH_SECRET is required (shared key the platform relay signs its tokens with)")
	}

	switch cfg.RateLimitBackend {
	case BackendRedis, BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when RATELIMIT_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown RATELIMIT_BACKEND %q (expected redis, postgres or memory)", cfg.RateLimitBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
