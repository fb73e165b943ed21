// Package config provides configuration management for the scavd miner.
// It handles loading configuration from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the global configuration for the miner
type Config struct {
	// Service identification
	ServiceName string
	Version     string
	Environment string

	// Mining identity and endpoints
	Address    string
	BaseURL    string
	OracleHost string
	OraclePort string
	CSVPath    string

	// Worker pool
	Workers      int
	NonceBatch   int
	SubmitOnFind bool

	// Timeouts and intervals
	SocketTimeout time.Duration
	SubmitTimeout time.Duration
	StatsInterval time.Duration

	// Kafka configuration
	KafkaEnabled bool
	KafkaBrokers []string

	// Database connections
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     int
	PostgresDatabase string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	InfluxEnabled bool
	InfluxURL     string
	InfluxToken   string
	InfluxOrg     string
	InfluxBucket  string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		// Service defaults
		ServiceName: getEnv("SERVICE_NAME", "scavd"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Mining defaults
		Address:    getEnv("MINER_ADDRESS", "addr1q8cecrzfzfnvup2rd8sqrqal3gtmcvkf7pgc93vd6c2a8rjtsq2sfvt940xjsl5v4ppmhjcqm0ycp9qkkxfcc8zvdzls2ca792"),
		BaseURL:    getEnv("BASE_URL", "https://scavenger.prod.gd.midnighttge.io"),
		OracleHost: getEnv("ORACLE_HOST", "127.0.0.1"),
		OraclePort: getEnv("ORACLE_PORT", "4002"),
		CSVPath:    getEnv("CHALLENGES_CSV", "challenges.csv"),

		// Worker pool defaults
		Workers:      getEnvInt("WORKERS", 8),
		NonceBatch:   getEnvInt("NONCE_BATCH", 1024),
		SubmitOnFind: getEnvBool("SUBMIT_ON_FIND", true),

		// Timeout defaults
		SocketTimeout: getEnvDuration("SOCKET_TIMEOUT", 5*time.Second),
		SubmitTimeout: getEnvDuration("SUBMIT_TIMEOUT", 10*time.Second),
		StatsInterval: getEnvDuration("STATS_INTERVAL", 10*time.Second),

		// Kafka defaults
		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),

		// Database defaults
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "scavd"),
		PostgresUser:     getEnv("POSTGRES_USER", "scavd"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		InfluxEnabled: getEnvBool("INFLUX_ENABLED", false),
		InfluxURL:     getEnv("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:   getEnv("INFLUX_TOKEN", ""),
		InfluxOrg:     getEnv("INFLUX_ORG", "scavd"),
		InfluxBucket:  getEnv("INFLUX_BUCKET", "mining"),

		// Logging defaults
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate performs basic validation of configuration values
func (c *Config) validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME cannot be empty")
	}

	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("MINER_ADDRESS cannot be empty")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL cannot be empty")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}

	if c.NonceBatch <= 0 {
		return fmt.Errorf("NONCE_BATCH must be positive")
	}

	if port, err := strconv.Atoi(c.OraclePort); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("ORACLE_PORT must be between 1 and 65535")
	}

	if c.SocketTimeout <= 0 {
		return fmt.Errorf("SOCKET_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
