package common

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hippocampus-app/hippocampus/constants"
)

// Config holds all application configuration. It is loaded once in main and
// passed into components explicitly; business logic never reads the
// environment itself.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	LLM       LLMConfig
	Household HouseholdConfig
	Ingest    IngestConfig
}

// DatabaseConfig holds store-related configuration.
type DatabaseConfig struct {
	Driver           string // "postgres" or "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr           string
	AllowedOrigins string
}

// LLMConfig holds model-provider configuration.
type LLMConfig struct {
	RouterProvider string // "openai", "gemini" or "local"
	VisionProvider string // "openai" or "gemini"
	APIKey         string
	BaseURL        string
	Model          string
	VisionModel    string
	GeminiAPIKey   string
	GeminiModel    string
	Temperature    float32
	Timeout        time.Duration
}

// HouseholdConfig holds the default household identity and currency.
type HouseholdConfig struct {
	Name            string
	DefaultCurrency string
}

// IngestConfig controls the receipt drop folder. An empty Dir disables it.
type IngestConfig struct {
	Dir         string
	Member      string // expenses from the folder are attributed to this member
	Debounce    time.Duration
	InitialScan bool
}

// LoadConfig loads configuration from environment variables. A .env file is
// honored for local development.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		},
		LLM: LLMConfig{
			RouterProvider: getEnv("ROUTER_PROVIDER", "local"),
			VisionProvider: getEnv("VISION_PROVIDER", "openai"),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
			VisionModel:    getEnv("OPENAI_VISION_MODEL", "gpt-5"),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:    getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Household: HouseholdConfig{
			Name:            getEnv("HOUSEHOLD_NAME", "home-001"),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", constants.DefaultCurrency),
		},
		Ingest: IngestConfig{
			Dir:         getEnv("WATCH_DIR", ""),
			Member:      getEnv("WATCH_MEMBER", "Partner 1"),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			InitialScan: getEnv("WATCH_INITIAL_SCAN", "false") == "true",
		},
	}
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.LLM.RouterProvider != "local" && c.LLM.APIKey == "" && c.LLM.GeminiAPIKey == "" {
		return NewAppError("CONFIG_ERROR", "a model API key is required unless ROUTER_PROVIDER=local", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
