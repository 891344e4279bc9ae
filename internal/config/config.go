// Package config provides configuration for the intake service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ModeMock swaps the retrieval client for the in-process mock.
	ModeMock = "MOCK"

	TranscriptBackendFile   = "file"
	TranscriptBackendSQLite = "sqlite"
)

// Config holds the intake service configuration.
type Config struct {
	// Server settings
	HTTPPort         int
	CORSAllowOrigins []string

	// Storage
	DatabaseURL       string
	TranscriptBackend string
	OneDriveBasePath  string
	StorageBasePath   string

	// Retrieval backend
	VectorDBURL      string
	VectorDBAPIKey   string
	RetrievalTimeout time.Duration

	// Session event feed
	WSPingInterval time.Duration
	WSWriteTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	Mode string
}

// Load loads configuration from environment variables, after applying a
// .env file from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		CORSAllowOrigins:  splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		DatabaseURL:       getEnv("DATABASE_URL", "file:intake.db?cache=shared&mode=rwc"),
		TranscriptBackend: strings.ToLower(getEnv("TRANSCRIPT_BACKEND", TranscriptBackendFile)),
		OneDriveBasePath:  getEnv("ONEDRIVE_BASE_PATH", "./var/onedrive"),
		StorageBasePath:   getEnv("STORAGE_BASE_PATH", "./var/storage"),
		VectorDBURL:       getEnv("VECTOR_DB_URL", "http://medical_vector_database:8000"),
		VectorDBAPIKey:    getEnv("VECTOR_DB_API_KEY", ""),
		RetrievalTimeout:  time.Duration(getEnvInt("RETRIEVAL_TIMEOUT_MS", 15000)) * time.Millisecond,
		WSPingInterval:    time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WSWriteTimeout:    time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		Mode:              strings.ToUpper(getEnv("INTAKE_MODE", "")),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
