package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	ServerPort string

	// DatabaseType selects the dialect: "sqlite", "postgres", or "mysql"
	DatabaseType string
	// DatabasePath is the file path for SQLite databases
	DatabasePath string
	// DatabaseURL is the DSN for PostgreSQL/MySQL
	DatabaseURL string
	// MigrationsPath is the root directory containing per-dialect migration subdirectories
	MigrationsPath string

	JWTSecret     string
	TokenDuration time.Duration
	// AdminUsername, when set, is promoted to admin at startup
	AdminUsername string

	// DailyNewCap limits how many unseen words a normal session introduces
	DailyNewCap int
	// RolloverHour is the local hour at which the study day advances (0-23)
	RolloverHour int
	// SessionIdleTimeout controls when abandoned drill sessions are flushed and dropped
	SessionIdleTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("PORT", "8080"),
		DatabaseType:       getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:       getEnv("DB_PATH", "./vocabdrill.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenDuration:      24 * time.Hour,
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		DailyNewCap:        getEnvInt("DAILY_NEW_CAP", 20),
		RolloverHour:       getEnvInt("STUDY_DAY_ROLLOVER_HOUR", 4),
		SessionIdleTimeout: 2 * time.Hour,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch cfg.DatabaseType {
	case "sqlite":
		// DatabasePath always has a default
	case "postgres", "mysql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for database type %q", cfg.DatabaseType)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.RolloverHour < 0 || cfg.RolloverHour > 23 {
		return nil, fmt.Errorf("STUDY_DAY_ROLLOVER_HOUR must be between 0 and 23, got %d", cfg.RolloverHour)
	}
	if cfg.DailyNewCap < 1 {
		return nil, fmt.Errorf("DAILY_NEW_CAP must be positive, got %d", cfg.DailyNewCap)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
