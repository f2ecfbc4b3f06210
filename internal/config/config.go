package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	CoursePath      string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	ProgressStore string
	RedisAddr     string

	SessionSecret   string
	LearnerTokenTTL time.Duration
	RateLimit       int
	RateWindow      time.Duration

	PlayerIdleTimeout time.Duration

	LogMode string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present; real
// environment variables always win over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./steam4all.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		CoursePath:      getEnv("COURSE_PATH", ""),

		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout: getDuration("GEMINI_TIMEOUT", 0),

		ProgressStore: strings.ToLower(getEnv("PROGRESS_STORE", "sql")),
		RedisAddr:     getEnv("REDIS_ADDR", ""),

		SessionSecret:   getEnv("SESSION_SECRET", "change-me-in-production"),
		LearnerTokenTTL: getDuration("LEARNER_TOKEN_TTL", 365*24*time.Hour),
		RateLimit:       getInt("RATE_LIMIT", 20),
		RateWindow:      time.Minute,

		PlayerIdleTimeout: getDuration("PLAYER_IDLE_TIMEOUT", 30*time.Minute),

		LogMode: getEnv("LOG_MODE", "dev"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getDuration accepts Go duration strings ("45s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}
