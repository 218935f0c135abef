package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./gamedex.db" {
			t.Errorf("expected database path ./gamedex.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Search.APIBaseURL != "http://127.0.0.1:8080" {
			t.Errorf("expected API base URL http://127.0.0.1:8080, got %s", config.Search.APIBaseURL)
		}

		if config.Search.DebounceMS != 350 {
			t.Errorf("expected debounce 350ms, got %d", config.Search.DebounceMS)
		}

		if config.Search.Region != "US" {
			t.Errorf("expected region US, got %s", config.Search.Region)
		}

		if config.Fetcher.MaxPages != 50 {
			t.Errorf("expected max pages 50, got %d", config.Fetcher.MaxPages)
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

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[search]
api_base_url = "http://api.example.com"
debounce_ms = 200
limit = 10
region = "GB"

[fetcher]
market = "GB"
language = "en-gb"
max_pages = 5
rate_limit = 0.5

[credentials.twitch]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if config.Search.DebounceMS != 200 {
			t.Errorf("expected debounce 200, got %d", config.Search.DebounceMS)
		}
		if config.Search.Region != "GB" {
			t.Errorf("expected region GB, got %s", config.Search.Region)
		}
		if config.Fetcher.RateLimit != 0.5 {
			t.Errorf("expected rate limit 0.5, got %f", config.Fetcher.RateLimit)
		}
		if config.Credentials.Twitch.ClientID != "test_client_id" {
			t.Errorf("expected twitch client id, got %s", config.Credentials.Twitch.ClientID)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("loading a missing config file should fail")
		}
	})
}
