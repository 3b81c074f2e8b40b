package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Sentry     SentryConfig
	Telemetry  TelemetryConfig
	RateLimit  RateLimitConfig
	Selector   SelectorConfig
	Moderation ModerationConfig
	Media      MediaConfig
	TextGen    TextGenConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port        string
	GinMode     string
	BaseURL     string
	Environment string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins string
}

// SentryConfig holds Sentry error tracking configuration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Enabled          bool
}

// TelemetryConfig holds distributed tracing configuration
type TelemetryConfig struct {
	Enabled          bool
	ServiceName      string
	ServiceVersion   string
	OTLPEndpoint     string
	Insecure         bool
	TracesSampleRate float64
	Environment      string
}

// RateLimitConfig holds rate limiting configuration for the hot read/write paths.
type RateLimitConfig struct {
	// AdsSelectLimit bounds GET /ads requests per minute per client.
	AdsSelectLimit int
	// AdsClickLimit bounds POST /ads/{id}/click requests per minute per client.
	AdsClickLimit int
	// WhitelistIPs bypasses rate limiting (comma-separated, for development/testing).
	WhitelistIPs string
}

// SelectorConfig holds the scoring weights and exploration rate documented in spec.md §6.
type SelectorConfig struct {
	WeightProfit      float64 // w_profit, default 0.5
	WeightRelevance   float64 // w_relevance, default 0.25
	WeightFulfillment float64 // w_fulfillment, default 0.15
	WeightTimeLeft    float64 // w_time_left, default 0 (disabled)
	ExplorationEps    float64 // probability of bypassing the targeting filter, default 0.04
}

// ModerationConfig holds the fuzzy-match sensitivity and default moderation mode.
type ModerationConfig struct {
	Sensitivity         float64 // fraction of word length tolerated as edit distance, default 0.3
	DefaultAutoModerate bool    // ModerationSetting.auto_moderate_enabled default
}

// MediaConfig bounds campaign image uploads handled by the BlobStore collaborator.
type MediaConfig struct {
	MaxImagesPerCampaign int
	MaxImageSizeBytes    int64
	AllowedMIMETypes     []string
}

// TextGenConfig configures the outbound call to the TextGenerator collaborator.
type TextGenConfig struct {
	Endpoint          string
	TimeoutSeconds    int
	TitleSystemPrompt string
	BodySystemPrompt  string
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a fallback default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a fallback default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvInt gets an int environment variable with a fallback default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 gets an int64 environment variable with a fallback default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated environment variable into a trimmed, non-empty slice.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// clampFloat clamps a float64 value between min and max
func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "adserve"),
			Password: getEnv("DB_PASSWORD", "CHANGEME_SECURE_PASSWORD_HERE"),
			Name:     getEnv("DB_NAME", "adserve_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 1.0),
			Enabled:          getEnvBool("SENTRY_ENABLED", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:          getEnvBool("TELEMETRY_ENABLED", false),
			ServiceName:      getEnv("TELEMETRY_SERVICE_NAME", "adserve-backend"),
			ServiceVersion:   getEnv("TELEMETRY_SERVICE_VERSION", ""),
			OTLPEndpoint:     getEnv("TELEMETRY_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:         getEnvBool("TELEMETRY_INSECURE", true),
			TracesSampleRate: clampFloat(getEnvFloat("TELEMETRY_TRACES_SAMPLE_RATE", 0.1), 0.0, 1.0),
			Environment:      getEnv("TELEMETRY_ENVIRONMENT", getEnv("ENVIRONMENT", "development")),
		},
		RateLimit: RateLimitConfig{
			AdsSelectLimit: getEnvInt("RATE_LIMIT_ADS_SELECT", 600),
			AdsClickLimit:  getEnvInt("RATE_LIMIT_ADS_CLICK", 120),
			WhitelistIPs:   getEnv("RATE_LIMIT_WHITELIST_IPS", ""),
		},
		Selector: SelectorConfig{
			WeightProfit:      getEnvFloat("SELECTOR_WEIGHT_PROFIT", 0.5),
			WeightRelevance:   getEnvFloat("SELECTOR_WEIGHT_RELEVANCE", 0.25),
			WeightFulfillment: getEnvFloat("SELECTOR_WEIGHT_FULFILLMENT", 0.15),
			WeightTimeLeft:    getEnvFloat("SELECTOR_WEIGHT_TIME_LEFT", 0),
			ExplorationEps:    getEnvFloat("SELECTOR_EXPLORATION_EPSILON", 0.04),
		},
		Moderation: ModerationConfig{
			Sensitivity:         clampFloat(getEnvFloat("MODERATION_SENSITIVITY", 0.3), 0, 1),
			DefaultAutoModerate: getEnvBool("MODERATION_AUTO_ENABLED_DEFAULT", false),
		},
		Media: MediaConfig{
			MaxImagesPerCampaign: getEnvInt("MEDIA_MAX_IMAGES_PER_CAMPAIGN", 5),
			MaxImageSizeBytes:    getEnvInt64("MEDIA_MAX_IMAGE_SIZE_BYTES", 5*1024*1024),
			AllowedMIMETypes:     getEnvList("MEDIA_ALLOWED_MIME_TYPES", "image/png,image/jpeg,image/webp"),
		},
		TextGen: TextGenConfig{
			Endpoint:          getEnv("TEXTGEN_ENDPOINT", "http://localhost:9090/generate"),
			TimeoutSeconds:    getEnvInt("TEXTGEN_TIMEOUT_SECONDS", 5),
			TitleSystemPrompt: getEnv("TEXTGEN_TITLE_SYSTEM_PROMPT", "Write a short, punchy ad title."),
			BodySystemPrompt:  getEnv("TEXTGEN_BODY_SYSTEM_PROMPT", "Write persuasive ad body copy in two sentences."),
		},
	}

	return config, nil
}

// GetDatabaseURL returns a PostgreSQL connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
