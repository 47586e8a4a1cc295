package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Validate when no Gemini credential was supplied.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

type Config struct {
	Port            int
	GeminiAPIKey    string
	GeminiModel     string
	GeminiEndpoint  string // Overrides the Gemini API base URL when set
	CameraDevice    int
	CameraFPS       int
	MaxUploadSizeMB int64
	LogDirectory    string
	StaticDirectory string
}

// Load reads the configuration from environment variables. Variables from the
// file named by ENV_FILE (default ".env") are loaded first if that file exists;
// variables already present in the environment take precedence. A file that
// exists but cannot be parsed is an error.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiEndpoint:  getEnv("GEMINI_ENDPOINT", ""),
		CameraDevice:    getEnvAsInt("CAMERA_DEVICE", 0),
		CameraFPS:       getEnvAsInt("CAMERA_FPS", 10),
		MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 10),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDirectory: getEnv("STATIC_DIR", filepath.Join(".", "static")),
	}, nil
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.CameraFPS <= 0 {
		return fmt.Errorf("invalid CAMERA_FPS: %d", c.CameraFPS)
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %d", c.MaxUploadSizeMB)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
