package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	ServerPort      string
	BaseURL         string
	SessionDuration time.Duration

	// Database. Type selects the dialect; SQLite uses Path, the server
	// databases use URL.
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Lesson-run session storage. Empty RedisURL keeps runs in memory.
	RedisURL string

	// Upstream text-to-speech service.
	TTSBaseURL  string
	TTSCacheDir string
	TTSVoice    string

	// Progress report email via SES. Reports are skipped when the sender
	// address is unset.
	AWSRegion       string
	ReportFromEmail string

	// OAuth sign-in.
	GoogleClientID     string
	GoogleClientSecret string
	AppleClientID      string
	AppleTeamID        string
	AppleKeyID         string
	ApplePrivateKey    string

	// Login rate limiting.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),

		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./lusolingo.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RedisURL: getEnv("REDIS_URL", ""),

		TTSBaseURL:  getEnv("TTS_BASE_URL", "http://localhost:5002"),
		TTSCacheDir: getEnv("TTS_CACHE_DIR", "./tts-cache"),
		TTSVoice:    getEnv("TTS_VOICE", "pt-PT-RaquelNeural"),

		AWSRegion:       getEnv("AWS_REGION", "eu-west-1"),
		ReportFromEmail: getEnv("REPORT_FROM_EMAIL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		AppleClientID:      getEnv("APPLE_CLIENT_ID", ""),
		AppleTeamID:        getEnv("APPLE_TEAM_ID", ""),
		AppleKeyID:         getEnv("APPLE_KEY_ID", ""),
		ApplePrivateKey:    getEnv("APPLE_PRIVATE_KEY", ""),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
