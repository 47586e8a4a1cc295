package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_ENDPOINT", "CAMERA_DEVICE",
		"CAMERA_FPS", "MAX_UPLOAD_SIZE_MB", "LOG_DIR", "STATIC_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("Expected default model, got %s", cfg.GeminiModel)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("Expected empty API key, got %s", cfg.GeminiAPIKey)
	}
	if cfg.CameraFPS != 10 {
		t.Errorf("Expected 10 fps, got %d", cfg.CameraFPS)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("Expected 10MB upload limit, got %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("CAMERA_DEVICE", "2")
	t.Setenv("CAMERA_FPS", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("Expected API key from env, got %q", cfg.GeminiAPIKey)
	}
	if cfg.CameraDevice != 2 {
		t.Errorf("Expected camera device 2, got %d", cfg.CameraDevice)
	}
	if cfg.CameraFPS != 10 {
		t.Errorf("Invalid CAMERA_FPS should fall back to default, got %d", cfg.CameraFPS)
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("GEMINI_API_KEY=from-file\nGEMINI_MODEL=gemini-pro-vision\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envFile)
	// godotenv never overrides a variable that exists, even an empty one.
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("GEMINI_MODEL")
	t.Cleanup(func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("GEMINI_MODEL")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GeminiAPIKey != "from-file" {
		t.Errorf("Expected API key from env file, got %q", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-pro-vision" {
		t.Errorf("Expected model from env file, got %q", cfg.GeminiModel)
	}
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "broken.env")
	if err := os.WriteFile(envFile, []byte("GEMINI_API_KEY=\"unterminated\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envFile)

	cfg, err := Load()
	if err == nil {
		t.Fatalf("Expected an error for a malformed env file, got %+v", cfg)
	}
	if !strings.Contains(err.Error(), envFile) {
		t.Errorf("Error should name the env file, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, GeminiAPIKey: "key", CameraFPS: 10, MaxUploadSizeMB: 10}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing key", func(c *Config) { c.GeminiAPIKey = "" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"bad fps", func(c *Config) { c.CameraFPS = -1 }, true},
		{"bad upload size", func(c *Config) { c.MaxUploadSizeMB = 0 }, true},
	}

	for _, tt := range tests {
		cfg := valid
		tt.modify(&cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidate_MissingKeyIsSentinel(t *testing.T) {
	cfg := Config{Port: 8080, CameraFPS: 10, MaxUploadSizeMB: 10}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}
