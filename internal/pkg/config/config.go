package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type GenerationConfig struct {
	APIKey string
	// Model is pinned to a specific snapshot so content does not silently
	// drift when the provider promotes a new default.
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	RequestTimeout  time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	PacingDelay     time.Duration
}

type EnrichmentConfig struct {
	// BasicThreshold and RichThreshold are the minimum description lengths
	// for the two completeness tiers.
	BasicThreshold int
	RichThreshold  int
	ClaimTTL       time.Duration
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type Config struct {
	Repositories RepositoriesConfig
	Generation   GenerationConfig
	Enrichment   EnrichmentConfig
	ServerPort   string
	MetricsPort  string
	PprofPort    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "wanderseed"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Generation: GenerationConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-001"),
			Temperature:     0.7,
			MaxOutputTokens: 16384,
			RequestTimeout:  getDurationOrDefault("GENERATION_TIMEOUT", 60*time.Second),
			MaxAttempts:     getIntOrDefault("GENERATION_MAX_ATTEMPTS", 3),
			InitialBackoff:  getDurationOrDefault("GENERATION_INITIAL_BACKOFF", 2*time.Second),
			PacingDelay:     getDurationOrDefault("GENERATION_PACING_DELAY", 2*time.Second),
		},
		Enrichment: EnrichmentConfig{
			BasicThreshold: getIntOrDefault("ENRICHMENT_BASIC_THRESHOLD", 150),
			RichThreshold:  getIntOrDefault("ENRICHMENT_RICH_THRESHOLD", 500),
			ClaimTTL:       getDurationOrDefault("ENRICHMENT_CLAIM_TTL", 10*time.Minute),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsPort: getEnvOrDefault("METRICS_PORT", "9092"),
		PprofPort:   getEnvOrDefault("PPROF_PORT", "6060"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
