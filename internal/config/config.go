package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// EndpointEnv overrides the configured endpoint when set.
const EndpointEnv = "PORTAL_ENDPOINT"

// Tab describes one dashboard tab: which sheet it reads and how the rows are
// reshaped.
type Tab struct {
	ID          string `yaml:"id" validate:"required,alphanum"`
	Label       string `yaml:"label" validate:"required"`
	Sheet       string `yaml:"sheet" validate:"required"`
	View        string `yaml:"view" validate:"required,oneof=society sessions table"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Loading     string `yaml:"loading,omitempty"`
	Action      string `yaml:"action,omitempty"` // label shown on link cells
}

type Config struct {
	Endpoint         string   `yaml:"endpoint" validate:"required,http_url"`
	Timeout          string   `yaml:"timeout,omitempty"`
	RateLimit        float64  `yaml:"rate_limit" validate:"gte=0"`
	Burst            int      `yaml:"burst" validate:"gte=0"`
	HistoryRetention string   `yaml:"history_retention,omitempty"`
	ReservedColumns  []string `yaml:"reserved_columns"`
	Tabs             []Tab    `yaml:"tabs" validate:"required,min=1,unique=ID,dive"`
}

func (c *Config) TimeoutDuration() time.Duration {
	d, err := ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	d, err := ParseDuration(c.HistoryRetention)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour // default: 30 days
	}
	return d
}

// TabByID returns the tab with the given id, or the tab whose label matches
// case-insensitively.
func (c *Config) TabByID(id string) (Tab, bool) {
	for _, t := range c.Tabs {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range c.Tabs {
		if strings.EqualFold(t.Label, id) {
			return t, true
		}
	}
	return Tab{}, false
}

func (c *Config) TabIDs() []string {
	ids := make([]string, len(c.Tabs))
	for i, t := range c.Tabs {
		ids[i] = t.ID
	}
	return ids
}

// ParseDuration accepts time.ParseDuration syntax plus whole days ("7d").
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "portal", "config.yaml")
}

// HistoryPath is the sqlite fetch log.
func HistoryPath() string {
	return filepath.Join(xdg.StateHome, "portal", "history.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "portal", "portal.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default location), writing the
// embedded defaults there on first run. PORTAL_ENDPOINT overrides the
// endpoint.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if env := os.Getenv(EndpointEnv); env != "" {
		cfg.Endpoint = env
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults still apply.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Tabs) == 0 {
		cfg.Tabs = defaults.Tabs
	}
	if cfg.ReservedColumns == nil {
		cfg.ReservedColumns = defaults.ReservedColumns
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the duration fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	for name, v := range map[string]string{"timeout": cfg.Timeout, "history_retention": cfg.HistoryRetention} {
		if v == "" {
			continue
		}
		if _, err := ParseDuration(v); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}
