package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB     DBConfig
	MinIO  MinIOConfig
	JWT    JWTConfig
	Server ServerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Startup retries the initial connection this many times, waiting
	// RetryDelay between attempts.
	ConnectRetries int
	RetryDelay     time.Duration
}

type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	Enabled        bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port            string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func Load() *Config {
	// Missing .env is fine; plain env vars still apply.
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "gatherly"),
			Password:       getEnv("DB_PASSWORD", "gatherly_secret"),
			Name:           getEnv("DB_NAME", "gatherly"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ConnectRetries: getEnvAsInt("DB_CONNECT_RETRIES", 5),
			RetryDelay:     getEnvAsDuration("DB_RETRY_DELAY", 5*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", "gatherly"),
			SecretKey:      getEnv("MINIO_SECRET_KEY", "gatherly_secret"),
			Bucket:         getEnv("MINIO_BUCKET", "gatherly-photos"),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
			Enabled:        getEnvAsBool("MINIO_ENABLED", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "3000"),
			RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
