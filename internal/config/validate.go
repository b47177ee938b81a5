package config

import (
	"fmt"
	"strings"

	"LiveDraws/internal/draw"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// listing every problem found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateApp(cfg, ve)
	validateBrush(cfg, ve)
	validateStore(cfg, ve)
	validateShare(cfg, ve)
	validatePrompt(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateApp(cfg *Config, ve *ValidationError) {
	if cfg.App.Width <= 0 || cfg.App.Height <= 0 {
		ve.Add("app.width and app.height must be > 0 (got %dx%d)", cfg.App.Width, cfg.App.Height)
	}
	if cfg.App.ExportDir == "" {
		ve.Add("app.export_dir must not be empty")
	}
}

func validateBrush(cfg *Config, ve *ValidationError) {
	if _, err := draw.ParseColor(cfg.Brush.Color); err != nil {
		ve.Add("brush.color: %v", err)
	}
	if cfg.Brush.Width < draw.MinWidth || cfg.Brush.Width > draw.MaxWidth {
		ve.Add("brush.width must be between %d and %d (got %d)", draw.MinWidth, draw.MaxWidth, cfg.Brush.Width)
	}
	if _, err := draw.ParseStyle(cfg.Brush.Style); err != nil {
		ve.Add("brush.style: %v", err)
	}
}

func validateStore(cfg *Config, ve *ValidationError) {
	switch cfg.Store.Driver {
	case "sqlite":
		if cfg.Store.Path == "" {
			ve.Add("store.path is required for the sqlite driver")
		}
	case "memory":
	default:
		ve.Add("store.driver %q is not supported (sqlite, memory)", cfg.Store.Driver)
	}
}

func validateShare(cfg *Config, ve *ValidationError) {
	if !cfg.Share.Enabled {
		return
	}
	if cfg.Share.Port <= 0 || cfg.Share.Port > 65535 {
		ve.Add("share.port must be in 1..65535 (got %d)", cfg.Share.Port)
	}
	if cfg.Share.MaxFPS <= 0 {
		ve.Add("share.max_fps must be > 0")
	}
	if cfg.Share.MDNS && cfg.Share.ServiceName == "" {
		ve.Add("share.service_name must not be empty when share.mdns is on")
	}
}

func validatePrompt(cfg *Config, ve *ValidationError) {
	if cfg.Prompt.Model == "" {
		ve.Add("prompt.model must not be empty")
	}
	if !strings.HasPrefix(cfg.Prompt.BaseURL, "http://") && !strings.HasPrefix(cfg.Prompt.BaseURL, "https://") {
		ve.Add("prompt.base_url must be an http(s) URL (got %q)", cfg.Prompt.BaseURL)
	}
	if cfg.Prompt.Timeout <= 0 {
		ve.Add("prompt.timeout must be > 0")
	}
	if cfg.Prompt.RatePerMinute < 0 {
		ve.Add("prompt.rate_per_minute must be >= 0")
	}
	cb := cfg.Prompt.CircuitBreaker
	if cb.Enabled {
		if cb.MaxFailures == 0 {
			ve.Add("prompt.circuit_breaker.max_failures must be > 0")
		}
		if cb.Timeout <= 0 {
			ve.Add("prompt.circuit_breaker.timeout must be > 0")
		}
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q is not supported (text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is not supported (noop, stdout)", cfg.Tracer.Exporter)
	}
}
