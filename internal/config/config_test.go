package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Endpoint: "https://script.example.com/exec",
		Tabs: []Tab{
			{ID: "society", Label: "Society", Sheet: "Society", View: "society"},
			{ID: "master", Label: "Master", Sheet: "Master", View: "sessions"},
		},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Tabs) != 3 {
		t.Fatalf("expected 3 default tabs, got %d", len(cfg.Tabs))
	}
	wantSheets := []string{"Society", "Master", "CBSE & Zone"}
	for i, tab := range cfg.Tabs {
		if tab.Sheet != wantSheets[i] {
			t.Errorf("tab %d sheet = %q, want %q", i, tab.Sheet, wantSheets[i])
		}
	}
	if len(cfg.ReservedColumns) != 1 || cfg.ReservedColumns[0] != "rowNumber" {
		t.Errorf("unexpected reserved columns: %v", cfg.ReservedColumns)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("embedded defaults fail validation: %v", err)
	}
}

func TestTimeoutDuration(t *testing.T) {
	cfg := &Config{Timeout: "5s"}
	if d := cfg.TimeoutDuration(); d != 5*time.Second {
		t.Errorf("expected 5s, got %v", d)
	}

	cfg.Timeout = "invalid"
	if d := cfg.TimeoutDuration(); d != 30*time.Second {
		t.Errorf("expected 30s default for invalid timeout, got %v", d)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"7d", 7},
		{"720h", 30},
		{"", 30},        // default
		{"invalid", 30}, // fallback to default
	}
	for _, tt := range tests {
		cfg := &Config{HistoryRetention: tt.input}
		got := cfg.RetentionDuration()
		if got != time.Duration(tt.wantDays)*24*time.Hour {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestTabByID(t *testing.T) {
	cfg := validConfig()
	if tab, ok := cfg.TabByID("master"); !ok || tab.Sheet != "Master" {
		t.Errorf("TabByID(master) = %v, %v", tab, ok)
	}
	if tab, ok := cfg.TabByID("SOCIETY"); !ok || tab.ID != "society" {
		t.Errorf("label lookup should be case-insensitive, got %v, %v", tab, ok)
	}
	if _, ok := cfg.TabByID("home"); ok {
		t.Error("expected unknown tab to be missing")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `endpoint: https://example.com/exec
timeout: 10s
tabs:
  - id: zones
    label: Zones
    sheet: CBSE & Zone
    view: table
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "https://example.com/exec" {
		t.Errorf("unexpected endpoint %s", cfg.Endpoint)
	}
	if len(cfg.Tabs) != 1 || cfg.Tabs[0].ID != "zones" {
		t.Errorf("expected the single user tab, got %v", cfg.Tabs)
	}
	// Reserved columns fall back to the defaults when unset.
	if len(cfg.ReservedColumns) != 1 {
		t.Errorf("expected default reserved columns, got %v", cfg.ReservedColumns)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Tabs) == 0 {
		t.Error("expected default tabs when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadEndpointOverride(t *testing.T) {
	t.Setenv(EndpointEnv, "http://localhost:8080/exec")
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "http://localhost:8080/exec" {
		t.Errorf("env override ignored, got %s", cfg.Endpoint)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("tabs: [\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"http endpoint", func(c *Config) { c.Endpoint = "http://example.com/exec" }, false},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"file scheme", func(c *Config) { c.Endpoint = "file:///etc/passwd" }, true},
		{"no tabs", func(c *Config) { c.Tabs = nil }, true},
		{"unknown view", func(c *Config) { c.Tabs[0].View = "chart" }, true},
		{"missing sheet", func(c *Config) { c.Tabs[1].Sheet = "" }, true},
		{"duplicate id", func(c *Config) { c.Tabs[1].ID = "society" }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }, true},
		{"day retention", func(c *Config) { c.HistoryRetention = "14d" }, false},
	}
	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		err := Validate(cfg)
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}
