package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/render"
)

// Default values applied when fields are absent from the config file. They
// reproduce the classroom benchmark: a 1024×1024 view of the whole set,
// 100 iterations, median of 3 runs.
const (
	DefaultRegion     = "classic"
	DefaultWidth      = 1024
	DefaultHeight     = 1024
	DefaultMaxIter    = 100
	DefaultRuns       = 3
	DefaultPalette    = "hsv"
	DefaultBufferSize = 16
	DefaultAuthHeader = "X-API-Key"
)

// Config is the top-level configuration for the benchmark driver.
type Config struct {
	Bench BenchConfig `yaml:"bench"`
}

// BenchConfig holds every benchmark setting.
type BenchConfig struct {
	// Region names a landmark window (see mandel.RegionNames). Mutually
	// exclusive with Bounds; empty when Bounds is set, which reports as
	// "custom".
	Region string `yaml:"region"`

	// Bounds is an explicit sampling window. Filled from Region when absent.
	Bounds *mandel.Bounds `yaml:"bounds"`

	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	MaxIter int `yaml:"max_iter"`

	// Runs is how many timed invocations each method gets; the median is
	// reported.
	Runs int `yaml:"runs"`

	// Methods lists the evaluators to time: naive | batched.
	Methods []string `yaml:"methods"`

	// ReportPath, when set, receives the results in Prometheus text format.
	ReportPath string `yaml:"report_path"`

	// ImagePath, when set, receives a PNG rendering of the last grid.
	ImagePath string `yaml:"image_path"`

	// Palette is the colour map for ImagePath: hsv | gray | fire.
	Palette string `yaml:"palette"`

	// Viewer configures shipping of finished reports. Disabled when
	// Viewer.Endpoint is empty.
	Viewer ViewerConfig `yaml:"viewer"`
}

// ViewerConfig describes the viewer server that receives reports.
type ViewerConfig struct {
	// Endpoint is the viewer's base URL, e.g. http://localhost:8080.
	Endpoint string `yaml:"endpoint"`

	// BufferSize is the maximum number of reports held while the viewer is
	// unreachable.
	BufferSize int `yaml:"buffer_size"`

	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig specifies how the driver authenticates to the viewer.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is sent in.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// ParsedMethods converts Methods into mandel.Method values. Load has already
// validated them.
func (b BenchConfig) ParsedMethods() []mandel.Method {
	out := make([]mandel.Method, 0, len(b.Methods))
	for _, s := range b.Methods {
		m, err := mandel.ParseMethod(s)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := resolve(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := defaults()
	// The default region always resolves.
	_ = resolve(cfg)
	return cfg
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Bench: BenchConfig{
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			MaxIter: DefaultMaxIter,
			Runs:    DefaultRuns,
			Methods: methodNames(mandel.Methods),
			Palette: DefaultPalette,
			Viewer: ViewerConfig{
				BufferSize: DefaultBufferSize,
				Auth:       AuthConfig{Header: DefaultAuthHeader},
			},
		},
	}
}

// resolve fills Bounds from Region when the file did not set bounds.
// Region defaults to classic only when neither is given.
func resolve(cfg *Config) error {
	if cfg.Bench.Bounds != nil {
		if cfg.Bench.Region != "" {
			return fmt.Errorf("bench: region and bounds are mutually exclusive")
		}
		return nil
	}
	if cfg.Bench.Region == "" {
		cfg.Bench.Region = DefaultRegion
	}
	b, ok := mandel.Region(cfg.Bench.Region)
	if !ok {
		return fmt.Errorf("bench.region: unknown region %q (known: %v)", cfg.Bench.Region, mandel.RegionNames())
	}
	cfg.Bench.Bounds = &b
	return nil
}

func methodNames(ms []mandel.Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	b := cfg.Bench
	if err := b.Bounds.Validate(); err != nil {
		return fmt.Errorf("bench.bounds: %w", err)
	}
	if b.Width <= 0 {
		return fmt.Errorf("bench.width must be positive")
	}
	if b.Height <= 0 {
		return fmt.Errorf("bench.height must be positive")
	}
	if b.MaxIter <= 0 {
		return fmt.Errorf("bench.max_iter must be positive")
	}
	if b.Runs <= 0 {
		return fmt.Errorf("bench.runs must be positive")
	}
	if len(b.Methods) == 0 {
		return fmt.Errorf("bench.methods must not be empty")
	}
	for i, m := range b.Methods {
		if _, err := mandel.ParseMethod(m); err != nil {
			return fmt.Errorf("bench.methods[%d]: %w", i, err)
		}
	}
	if _, err := render.ParsePalette(b.Palette); err != nil {
		return fmt.Errorf("bench.palette: %w", err)
	}
	if b.Viewer.Endpoint != "" && b.Viewer.BufferSize <= 0 {
		return fmt.Errorf("bench.viewer.buffer_size must be positive")
	}
	switch b.Viewer.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("bench.viewer.auth: unknown mode %q", b.Viewer.Auth.Mode)
	}
	return nil
}
