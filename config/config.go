package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Addr string

	DatasetSource string
	DatasetPath   string
	DatasetSheet  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIEndpoint string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutMs   int

	MaxRetries     int
	MaxConcurrency int
	RateLimitMs    int

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SummaryCacheTTLSec int

	LogDebug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Addr: getEnv("ADDR", ":8000"),

		DatasetSource: getEnv("DATASET_SOURCE", "file"),
		DatasetPath:   getEnv("DATASET_PATH", "./data/Sample_data.xlsx"),
		DatasetSheet:  getEnv("DATASET_SHEET", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "realty"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "realty123"),
		PostgresDB:       getEnv("POSTGRES_DB", "realty_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIEndpoint: getEnv("OPENAI_ENDPOINT", "https://api.openai.com/v1"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 100),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutMs:   getEnvInt("LLM_TIMEOUT_MS", 10000),

		MaxRetries:     getEnvInt("MAX_RETRIES", 1),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		SummaryCacheTTLSec: getEnvInt("SUMMARY_CACHE_TTL_SEC", 86400),

		LogDebug: getEnvBool("LOG_DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// LLMEnabled reports whether a text-generation credential is configured.
func (c *Config) LLMEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// LLMTimeout is the upper bound for a single summary generation.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMs) * time.Millisecond
}

func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
