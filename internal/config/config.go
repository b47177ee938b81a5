package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	User   UserConfig   `yaml:"user"`
	Brush  BrushConfig  `yaml:"brush"`
	Store  StoreConfig  `yaml:"store"`
	Share  ShareConfig  `yaml:"share"`
	Prompt PromptConfig `yaml:"prompt"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
}

// AppConfig holds window and file settings.
type AppConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	ExportDir string `yaml:"export_dir"`
}

// UserConfig holds the display name used to sign in at startup. Empty means
// the home screen asks for one.
type UserConfig struct {
	Name string `yaml:"name"`
}

// BrushConfig is the brush a new wall starts with.
type BrushConfig struct {
	Color string `yaml:"color"`
	Width int    `yaml:"width"`
	Style string `yaml:"style"` // pencil | crayon
}

// StoreConfig holds wall persistence settings.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | memory
	Path   string `yaml:"path"`
}

// ShareConfig controls the read-only share server.
type ShareConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	MDNS        bool   `yaml:"mdns"`
	ServiceName string `yaml:"service_name"`
	MaxFPS      int    `yaml:"max_fps"`
}

// PromptConfig holds drawing prompt suggestion settings.
type PromptConfig struct {
	APIKey         string               `yaml:"api_key"`
	Model          string               `yaml:"model"`
	BaseURL        string               `yaml:"base_url"`
	Timeout        time.Duration        `yaml:"timeout"`
	RatePerMinute  int                  `yaml:"rate_per_minute"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig holds circuit breaker settings for the prompt client.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".livedraws")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		App: AppConfig{
			Title:     "Live Draws",
			Width:     1000,
			Height:    700,
			ExportDir: ".",
		},
		Brush: BrushConfig{
			Color: "#000000",
			Width: 5,
			Style: "pencil",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dataDir, "walls.db"),
		},
		Share: ShareConfig{
			Enabled:     true,
			Port:        9090,
			MDNS:        true,
			ServiceName: "LiveDraws",
			MaxFPS:      10,
		},
		Prompt: PromptConfig{
			Model:         "gemini-1.5-flash",
			BaseURL:       "https://generativelanguage.googleapis.com",
			Timeout:       15 * time.Second,
			RatePerMinute: 10,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 3,
				Timeout:     30 * time.Second,
				Interval:    time.Minute,
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, falling back to defaults when the file does
// not exist. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps LIVEDRAWS_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIVEDRAWS_USER_NAME"); v != "" {
		cfg.User.Name = v
	}
	if v := os.Getenv("LIVEDRAWS_EXPORT_DIR"); v != "" {
		cfg.App.ExportDir = v
	}
	if v := os.Getenv("LIVEDRAWS_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LIVEDRAWS_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("LIVEDRAWS_SHARE_ENABLED"); v != "" {
		cfg.Share.Enabled = v == "true"
	}
	if v := os.Getenv("LIVEDRAWS_SHARE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Share.Port = n
		}
	}
	if v := os.Getenv("LIVEDRAWS_SHARE_MDNS"); v != "" {
		cfg.Share.MDNS = v == "true"
	}
	// GEMINI_API_KEY is the name the Gemini tooling uses; ours wins when both are set.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Prompt.APIKey = v
	}
	if v := os.Getenv("LIVEDRAWS_PROMPT_API_KEY"); v != "" {
		cfg.Prompt.APIKey = v
	}
	if v := os.Getenv("LIVEDRAWS_PROMPT_MODEL"); v != "" {
		cfg.Prompt.Model = v
	}
	if v := os.Getenv("LIVEDRAWS_PROMPT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Prompt.Timeout = d
		}
	}
	if v := os.Getenv("LIVEDRAWS_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LIVEDRAWS_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = strings.ToLower(v)
	}
	if v := os.Getenv("LIVEDRAWS_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("LIVEDRAWS_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}
