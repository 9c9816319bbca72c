package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `{}`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.API.BaseURL != DefaultAPIBase {
		t.Errorf("Expected default base URL %s, got %s", DefaultAPIBase, config.API.BaseURL)
	}
	if config.API.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.API.TimeoutSeconds)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `{"api": {"base_url": "http://file.example/api"}}`)

	t.Setenv("DOCCHAT_API_BASE", "http://env.example/api")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.API.BaseURL != "http://env.example/api" {
		t.Errorf("Environment should override file, got %s", config.API.BaseURL)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	original := &Config{
		API:  APIConfig{BaseURL: "http://host:9000/api", TimeoutSeconds: 15},
		UI:   UIConfig{Theme: "dark", FontSize: 16, WindowWidth: 800, WindowHeight: 600},
		Data: DataConfig{},
	}
	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.API.BaseURL != original.API.BaseURL {
		t.Errorf("Expected base URL %s, got %s", original.API.BaseURL, loaded.API.BaseURL)
	}
	if loaded.UI.Theme != "dark" || loaded.UI.FontSize != 16 {
		t.Errorf("UI settings not preserved: %+v", loaded.UI)
	}
}

func TestExpandPath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("No home directory available")
	}

	expanded := expandPath("~/docchat/data.db")
	if expanded != filepath.Join(home, "docchat", "data.db") {
		t.Errorf("Expected home expansion, got %s", expanded)
	}
}
