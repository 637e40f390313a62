package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Cache      CacheConfig
	Suggest    SuggestConfig
	Voice      VoiceConfig
	Similarity SimilarityConfig
	Analyzer   AnalyzerConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds search-related configuration.
type SearchConfig struct {
	PageSize     int
	SuggestLimit int
}

// CacheConfig holds query cache configuration.
type CacheConfig struct {
	StaleTimeMs int
}

// SuggestConfig holds suggestion fetcher configuration.
type SuggestConfig struct {
	DebounceMs int
}

// VoiceConfig holds voice command configuration.
type VoiceConfig struct {
	ConfidenceThreshold float64
	HistoryLimit        int
}

// SimilarityConfig holds similarity ranking configuration.
type SimilarityConfig struct {
	DefaultPreset string
}

// AnalyzerConfig holds vision-analysis API configuration.
type AnalyzerConfig struct {
	APIKey  string
	APIBase string
	Model   string
	Timeout int
	Enabled bool
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "property_search"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			PageSize:     getEnvAsInt("SEARCH_PAGE_SIZE", 12),
			SuggestLimit: getEnvAsInt("SEARCH_SUGGEST_LIMIT", 8),
		},
		Cache: CacheConfig{
			StaleTimeMs: getEnvAsInt("CACHE_STALE_TIME_MS", 30_000),
		},
		Suggest: SuggestConfig{
			DebounceMs: getEnvAsInt("SUGGEST_DEBOUNCE_MS", 300),
		},
		Voice: VoiceConfig{
			ConfidenceThreshold: getEnvAsFloat("VOICE_CONFIDENCE_THRESHOLD", 0.70),
			HistoryLimit:        getEnvAsInt("VOICE_HISTORY_LIMIT", 10),
		},
		Similarity: SimilarityConfig{
			DefaultPreset: getEnv("SIMILARITY_DEFAULT_PRESET", "balanced"),
		},
		Analyzer: AnalyzerConfig{
			APIKey:  getEnv("ANALYZER_API_KEY", ""),
			APIBase: getEnv("ANALYZER_API_BASE", "https://api.vision-analysis.example.com/v1"),
			Model:   getEnv("ANALYZER_MODEL", "property-features-v2"),
			Timeout: getEnvAsInt("ANALYZER_TIMEOUT", 30),
			Enabled: getEnv("ANALYZER_API_KEY", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string.
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
