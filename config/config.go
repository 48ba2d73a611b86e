package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Application
	ProjectName string
	Version     string
	Debug       bool

	// Server configuration
	ServerHost string
	ServerPort string

	// LLM configuration (OpenAI-compatible endpoint)
	LLMBaseURL     string
	LLMModel       string
	EmbeddingModel string
	LLMAPIKey      string

	// Generation settings
	AITemperature    float64
	AIMaxTokens      int
	AITimeoutSeconds int

	// Embedding settings
	EmbeddingDimensions     int
	EmbeddingTimeoutSeconds int

	// Database configuration
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis configuration (optional envelope cache)
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// CORS
	CORSOrigins []string
}

// Load builds a Config from environment variables, applying defaults for
// anything unset. A .env file in the working directory is honored when
// present.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ProjectName: getEnv("PROJECT_NAME", "AI Recipe Generator"),
		Version:     getEnv("PROJECT_VERSION", "0.1.0"),
		Debug:       getEnvBool("DEBUG", false),

		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8000"),

		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://127.0.0.1:1234/v1"),
		LLMModel:       getEnv("LLM_MODEL", "qwen3-vl-4b-instruct-mlx"),
		EmbeddingModel: getEnv("LLM_EMBEDDING_MODEL", "text-embedding-embeddinggemma-300m-qat"),
		LLMAPIKey:      getEnv("LLM_API_KEY", "lm-studio"),

		AITemperature:    getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxTokens:      getEnvInt("AI_MAX_TOKENS", 2000),
		AITimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 120),

		EmbeddingDimensions:     getEnvInt("EMBEDDING_DIMENSIONS", 768),
		EmbeddingTimeoutSeconds: getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 60),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "recipes"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 15),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL must not be empty")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.AITimeoutSeconds <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %d", c.AITimeoutSeconds)
	}
	if c.DBMaxOpenConns < c.DBMaxIdleConns {
		return fmt.Errorf("DB_MAX_OPEN_CONNS (%d) must be >= DB_MAX_IDLE_CONNS (%d)", c.DBMaxOpenConns, c.DBMaxIdleConns)
	}
	return nil
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
