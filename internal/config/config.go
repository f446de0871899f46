package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	DatabaseDSN string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SessionTTL  time.Duration
	SwaggerHost string
	LogLevel    string
	LogFormat   string

	// SeedFile points at the YAML secrets file with the demo accounts.
	SeedFile     string
	InitialQuota int

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ModelID         string
	ClassifyTimeout time.Duration
	RefundOnFailure bool
	LogoPath        string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseDSN:     getEnv("DATABASE_DSN", "users.db"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 12*time.Hour),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		SeedFile:        os.Getenv("SEED_FILE"),
		InitialQuota:    getEnvInt("INITIAL_QUOTA", DefaultQuota),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		ModelID:         os.Getenv("ID_MODEL_OPENAI"),
		ClassifyTimeout: getEnvDuration("CLASSIFY_TIMEOUT", 15*time.Second),
		RefundOnFailure: getEnvBool("QUOTA_REFUND_ON_FAILURE", false),
		LogoPath:        getEnv("LOGO_PATH", "logo/DELTA-WITS-LOGO-WHITE.png"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
