package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_WritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growbox.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	// The written file must load back to the same values.
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Errorf("reloaded cfg = %+v, want %+v", again, cfg)
	}
}

func TestLoadConfig_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growbox.yaml")
	writeFile(t, path, `
http:
  port: 8080
  shutdown_timeout: 2s
gpio:
  driver: fake
  pins:
    pump: 5
    light: 6
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.Host != "0.0.0.0" {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if got := cfg.HTTP.ShutdownTimeout.Duration(); got != 2*time.Second {
		t.Errorf("shutdown_timeout = %v, want 2s", got)
	}
	if got := cfg.HTTP.IdleTimeout.Duration(); got != 60*time.Second {
		t.Errorf("idle_timeout = %v, want default 60s", got)
	}
	if cfg.GPIO.Pins != (PinsConfig{Pump: 5, Light: 6}) {
		t.Errorf("pins = %+v", cfg.GPIO.Pins)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("GROWBOX_PORT", "9090")
	path := filepath.Join(t.TempDir(), "growbox.yaml")
	writeFile(t, path, `
http:
  port: ${GROWBOX_PORT}
gpio:
  driver: ${GROWBOX_DRIVER:-fake}
page:
  title: "${GROWBOX_UNSET_TITLE}"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.GPIO.Driver != "fake" {
		t.Errorf("driver = %q, want fake", cfg.GPIO.Driver)
	}
	if cfg.Page.Title != "" {
		t.Errorf("title = %q, want empty", cfg.Page.Title)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad port", "http:\n  port: 70000\n", "http.port"},
		{"bad driver", "gpio:\n  driver: wiringpi\n", "unknown gpio driver"},
		{"shared pin", "gpio:\n  pins:\n    pump: 4\n    light: 4\n", "share pin"},
		{"negative pin", "gpio:\n  pins:\n    pump: -1\n", "negative"},
		{"bad level", "log:\n  level: trace\n", "log.level"},
		{"bad duration", "http:\n  idle_timeout: soon\n", "invalid"},
		{"bad yaml", "http: [\n", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "growbox.yaml")
			writeFile(t, path, tt.yaml)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveConfig_RenameFailureRemovesTemp(t *testing.T) {
	// Renaming a file over a non-empty directory fails.
	path := filepath.Join(t.TempDir(), "growbox.yaml")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(path, "keep"), "x")

	if err := SaveConfig(path, defaultConfig()); err == nil {
		t.Fatal("SaveConfig over a directory succeeded")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestValidate_UnknownDriverIsSentinel(t *testing.T) {
	cfg := defaultConfig()
	cfg.GPIO.Driver = "sysfs"
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Validate = %v, want ErrUnknownDriver", err)
	}
}

func TestHTTPConfigAddr(t *testing.T) {
	if got := defaultConfig().HTTP.Addr(); got != "0.0.0.0:80" {
		t.Errorf("Addr = %q, want 0.0.0.0:80", got)
	}
}
