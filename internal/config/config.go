package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment
// variables (optionally via a .env file loaded by the caller).
type Config struct {
	Environment string
	Port        string

	// Logging
	LogLevel string
	LogFile  string

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration
	ResetTokenTTL   time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Email (AWS SES)
	AWSRegion     string
	EmailFrom     string
	EmailFromName string

	// Avatar storage (S3)
	S3Bucket   string
	CDNBaseURL string

	// BaseURL is the public URL of this API, used in emailed links.
	BaseURL string

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
	SamplingRate   float64
}

// Load reads configuration from the environment. JWT_SECRET is the only
// hard requirement; everything else has development-friendly defaults.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "server.log"),

		JWTSecret:       secret,
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		EmailTokenTTL:   getDuration("EMAIL_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:   getDuration("RESET_TOKEN_TTL", time.Hour),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@localhost"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Contacts API"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		TracingEnabled: getBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
		SamplingRate:   getFloat("TRACE_SAMPLING_RATE", 1.0),
	}

	return cfg, nil
}

// getEnv returns environment variable or default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
