package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"invoicedesk/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	DBMaxConns  int

	// Identity provider. JWKSURL takes precedence over JWTSecret.
	JWTSecret string
	JWKSURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ChangeChannel string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioRegion    string
	DocumentBucket string
	LinkExpiry     time.Duration

	WorkerConcurrency int
	OverdueSweepEvery time.Duration

	// Optional TOML file with tax rates and payment terms
	TaxConfigPath string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the environment, after applying any .env file found in the
// working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWKSURL:           getEnv("JWKS_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		ChangeChannel:     getEnv("CHANGE_CHANNEL", "invoicedesk:changes"),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:       getEnv("MINIO_USE_SSL", "false") == "true",
		MinioRegion:       getEnv("MINIO_REGION", "us-east-1"),
		DocumentBucket:    getEnv("DOCUMENT_BUCKET", "invoice-documents"),
		LinkExpiry:        getEnvDuration("DOCUMENT_LINK_EXPIRY", 24*time.Hour),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),
		OverdueSweepEvery: getEnvDuration("OVERDUE_SWEEP_INTERVAL", time.Hour),
		TaxConfigPath:     getEnv("TAX_CONFIG_PATH", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:         getEnv("LOG_OUTPUT", "stdout"),
	}

	return config, nil
}

// ValidateServer checks the settings the HTTP server cannot start without
func (c *Config) ValidateServer() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return fmt.Errorf("JWT_SECRET or JWKS_URL is required")
	}
	return nil
}

// ValidateDatabase checks the settings every command needs
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
