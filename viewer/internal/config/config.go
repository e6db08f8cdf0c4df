package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the viewer configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultReportTTL         = time.Hour
	DefaultBroadcastInterval = 5 * time.Second
	DefaultMaxPixels         = 2048 * 2048
	DefaultMaxIterLimit      = 10000
	DefaultAuthHeader        = "X-API-Key"
)

// Config holds the viewer configuration parsed from the `viewer:` section.
type Config struct {
	Viewer ViewerConfig `yaml:"viewer"`
}

// ViewerConfig holds all viewer settings.
type ViewerConfig struct {
	HTTPPort int `yaml:"http_port"`

	// ReportTTL is how long a report remains in the store after it was
	// received.
	ReportTTL time.Duration `yaml:"report_ttl"`

	// BroadcastInterval is how often connected WebSocket clients receive the
	// current report list.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// MaxPixels caps width*height of on-demand grids so a single request
	// cannot pin a core for minutes.
	MaxPixels int `yaml:"max_pixels"`

	// MaxIterLimit caps max_iter of on-demand evaluation.
	MaxIterLimit int `yaml:"max_iter_limit"`

	// Auth protects report submission.
	Auth AuthConfig `yaml:"auth"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold condition evaluated against every received
// report.
type AlertRule struct {
	// Name identifies the rule and, together with the report region, keys
	// deduplication.
	Name string `yaml:"name"`

	// Condition is "field operator value", e.g. "speedup < 1",
	// "naive_median_ms > 500" or "agree == false".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration. Defaults to 15m.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// AuthConfig controls client authentication on report submission.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header the key is read from.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("viewer config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("viewer config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("viewer config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Viewer: ViewerConfig{
			HTTPPort:          DefaultHTTPPort,
			ReportTTL:         DefaultReportTTL,
			BroadcastInterval: DefaultBroadcastInterval,
			MaxPixels:         DefaultMaxPixels,
			MaxIterLimit:      DefaultMaxIterLimit,
			Auth:              AuthConfig{Header: DefaultAuthHeader},
		},
	}
}

func validate(cfg *Config) error {
	v := cfg.Viewer
	if v.HTTPPort <= 0 || v.HTTPPort > 65535 {
		return fmt.Errorf("viewer.http_port %d is out of range [1, 65535]", v.HTTPPort)
	}
	if v.ReportTTL <= 0 {
		return fmt.Errorf("viewer.report_ttl must be positive")
	}
	if v.BroadcastInterval <= 0 {
		return fmt.Errorf("viewer.broadcast_interval must be positive")
	}
	if v.MaxPixels <= 0 {
		return fmt.Errorf("viewer.max_pixels must be positive")
	}
	if v.MaxIterLimit <= 0 {
		return fmt.Errorf("viewer.max_iter_limit must be positive")
	}
	switch v.Auth.Mode {
	case "apikey":
		if v.Auth.KeyEnv == "" {
			return fmt.Errorf("viewer.auth.key_env is required when mode is apikey")
		}
		if v.Auth.Header == "" {
			return fmt.Errorf("viewer.auth.header must not be empty")
		}
	case "none", "":
	default:
		return fmt.Errorf("viewer.auth.mode %q unknown: want apikey|none", v.Auth.Mode)
	}
	for i, r := range v.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("viewer.alerts.rules[%d].name is required", i)
		}
		if len(strings.Fields(r.Condition)) != 3 {
			return fmt.Errorf("viewer.alerts.rules[%d].condition %q: want \"field op value\"", i, r.Condition)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("viewer.alerts.rules[%d].severity %q unknown", i, r.Severity)
		}
	}
	for i, w := range v.Alerts.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("viewer.alerts.webhooks[%d].type %q unknown: want slack|teams|http", i, w.Type)
		}
	}
	return nil
}
