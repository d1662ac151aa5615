package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./correx.db" {
			t.Errorf("expected database path ./correx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8787 {
			t.Errorf("expected server port 8787, got %d", config.Server.Port)
		}

		if config.API.BaseURL != "http://127.0.0.1:3000" {
			t.Errorf("expected api base URL http://127.0.0.1:3000, got %s", config.API.BaseURL)
		}

		if config.API.Timeout.Duration != 15*time.Second {
			t.Errorf("expected api timeout 15s, got %v", config.API.Timeout.Duration)
		}

		if config.Cache.TTL.Duration != 10*time.Minute {
			t.Errorf("expected cache ttl 10m, got %v", config.Cache.TTL.Duration)
		}

		if config.Server.Addr() != "127.0.0.1:8787" {
			t.Errorf("expected addr 127.0.0.1:8787, got %s", config.Server.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://wiki.example.com/api"
token = "secret"
timeout = "3s"
rate_limit = 2.5

[api.headers]
X-Client = "correx"

[database]
path = "/custom/path.db"

[cache]
persist = true
ttl = "1h"

[server]
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://wiki.example.com/api" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.API.Token != "secret" {
			t.Errorf("expected token secret, got %s", config.API.Token)
		}
		if config.API.Timeout.Duration != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", config.API.Timeout.Duration)
		}
		if config.API.Headers["X-Client"] != "correx" {
			t.Errorf("expected X-Client header, got %v", config.API.Headers)
		}
		if !config.Cache.Persist || config.Cache.TTL.Duration != time.Hour {
			t.Errorf("expected persistent cache with 1h ttl, got %+v", config.Cache)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host to survive partial config, got %s", config.Server.Host)
		}
	})

	t.Run("LoadConfig Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.API.BaseURL = ""

		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		config = DefaultConfig()
		config.API.RateLimit = -1
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for negative rate limit, got %v", err)
		}
	})
	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
		config := DefaultConfig()
		config.API.Token = "secret"
		config.API.Headers = map[string]string{"X-Csrf-Token": "abc"}
		config.Cache.TTL = Duration{5 * time.Minute}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.API.Token != "secret" || loaded.API.Headers["X-Csrf-Token"] != "abc" {
			t.Errorf("expected credentials to round trip, got %+v", loaded.API)
		}
		if loaded.Cache.TTL.Duration != 5*time.Minute {
			t.Errorf("expected ttl 5m, got %v", loaded.Cache.TTL)
		}

		if err := SaveConfig(configPath, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for nil config, got %v", err)
		}
	})
}
