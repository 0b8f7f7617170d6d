package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Topaz Image API
	TopazAPIKey     string
	TopazAPIBaseURL string
	// TopazStatus404Pending controls whether a 404 while checking job
	// status means "not provisioned yet" (true, the common case) or a
	// transient fault (false, for API versions where 404 means a wrong
	// endpoint).
	TopazStatus404Pending bool

	// JobTimeout is the default wall-clock budget per job when the request
	// does not carry its own.
	JobTimeout time.Duration

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		TopazAPIKey:           getEnv("TOPAZ_API_KEY", ""),
		TopazAPIBaseURL:       getEnv("TOPAZ_API_BASE_URL", "https://api.topazlabs.com/image/v1"),
		TopazStatus404Pending: getEnvBool("TOPAZ_STATUS_404_PENDING", true),

		JobTimeout: getEnvDuration("JOB_TIMEOUT", 5*time.Minute),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "enhanced-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TopazAPIKey == "" {
		return fmt.Errorf("TOPAZ_API_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
