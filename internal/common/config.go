package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Upload      UploadConfig    `toml:"upload"`
	Normalize   NormalizeConfig `toml:"normalize"`
	Layout      LayoutConfig    `toml:"layout"`
	Highlight   HighlightConfig `toml:"highlight"`
	Cover       CoverConfig     `toml:"cover"`
	Delivery    DeliveryConfig  `toml:"delivery"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

// LoggingConfig selects arbor writers and level
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// UploadConfig bounds what the assemble endpoint accepts before any pipeline work runs
type UploadConfig struct {
	MaxBytes     int64    `toml:"max_bytes" validate:"gt=0"`
	AllowedKinds []string `toml:"allowed_kinds" validate:"min=1,dive,oneof=pdf doc docx md txt"`
}

// NormalizeConfig controls the re-flow of word-processor text into PDF pages.
// All measurements are in points.
type NormalizeConfig struct {
	PageSize   string  `toml:"page_size" validate:"oneof=A4 Letter A5 Legal"`
	Margin     float64 `toml:"margin" validate:"gt=0"`
	FontFamily string  `toml:"font_family" validate:"required"`
	FontSize   float64 `toml:"font_size" validate:"gt=0"`
	LineHeight float64 `toml:"line_height" validate:"gt=0"`
}

// LayoutConfig selects how text positions are read from PDFs
type LayoutConfig struct {
	Backend         string `toml:"backend" validate:"oneof=pdfcpu glyph"` // "pdfcpu" (content-stream interpreter) or "glyph"
	UseReflowLayout bool   `toml:"use_reflow_layout"`                     // Use the layout recorded while re-flowing word-processor input
}

// HighlightConfig styles the translucent highlight rectangles
type HighlightConfig struct {
	Color   string  `toml:"color" validate:"hexcolor"`
	Opacity float64 `toml:"opacity" validate:"gt=0,lte=1"`
	Padding float64 `toml:"padding" validate:"gte=0"`
}

// CoverConfig points at the external cover-document generator
type CoverConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Path      string `toml:"path"`
	Timeout   string `toml:"timeout"`    // Duration string, e.g. "30s"
	RateLimit string `toml:"rate_limit"` // Minimum time between requests, "0s" disables limiting
}

// TimeoutDuration parses Timeout, falling back to 30s when unset or invalid
func (c CoverConfig) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// RateLimitInterval parses RateLimit; unset or invalid disables limiting
func (c CoverConfig) RateLimitInterval() time.Duration {
	if d, err := time.ParseDuration(c.RateLimit); err == nil && d > 0 {
		return d
	}
	return 0
}

// DeliveryConfig names the output file and where the CLI writes it
type DeliveryConfig struct {
	FilenamePrefix string `toml:"filename_prefix" validate:"required"`
	Extension      string `toml:"extension" validate:"required"`
	OutputDir      string `toml:"output_dir"`
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in docmark.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "production",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05.000",
		},
		Upload: UploadConfig{
			MaxBytes:     10 << 20,
			AllowedKinds: []string{"pdf", "doc", "docx"},
		},
		Normalize: NormalizeConfig{
			PageSize:   "A4",
			Margin:     50,
			FontFamily: "Courier",
			FontSize:   11,
			LineHeight: 14,
		},
		Layout: LayoutConfig{
			Backend:         "pdfcpu",
			UseReflowLayout: false,
		},
		Highlight: HighlightConfig{
			Color:   "#FFEB3B",
			Opacity: 0.35,
			Padding: 1.5,
		},
		Cover: CoverConfig{
			BaseURL:   "http://localhost:3000",
			Path:      "/api/cover",
			Timeout:   "30s",
			RateLimit: "200ms",
		},
		Delivery: DeliveryConfig{
			FilenamePrefix: "highlighted",
			Extension:      "pdf",
			OutputDir:      "./output",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: defaults -> file1 -> file2 -> ... -> env
// Later files override earlier files. Environment variables override everything.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load each file in order, later files override earlier ones
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variable overrides (highest priority after files)
	applyEnvOverrides(config)

	// Validate once all layers are merged
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig checks struct-level constraints after all overrides have been applied
func ValidateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Durations are strings in TOML; reject unparseable values early
	durations := []struct{ key, value string }{
		{"cover.timeout", config.Cover.Timeout},
		{"cover.rate_limit", config.Cover.RateLimit},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid configuration: %s: invalid duration %q", d.key, d.value)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCMARK_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("DOCMARK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DOCMARK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging
	if level := os.Getenv("DOCMARK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCMARK_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}

	// Upload
	if maxBytes := os.Getenv("DOCMARK_UPLOAD_MAX_BYTES"); maxBytes != "" {
		if n, err := strconv.ParseInt(maxBytes, 10, 64); err == nil {
			config.Upload.MaxBytes = n
		}
	}
	if kinds := os.Getenv("DOCMARK_UPLOAD_ALLOWED_KINDS"); kinds != "" {
		config.Upload.AllowedKinds = splitList(kinds)
	}

	// Layout
	if backend := os.Getenv("DOCMARK_LAYOUT_BACKEND"); backend != "" {
		config.Layout.Backend = backend
	}
	if reflow := os.Getenv("DOCMARK_LAYOUT_USE_REFLOW_LAYOUT"); reflow != "" {
		if b, err := strconv.ParseBool(reflow); err == nil {
			config.Layout.UseReflowLayout = b
		}
	}

	// Highlight
	if color := os.Getenv("DOCMARK_HIGHLIGHT_COLOR"); color != "" {
		config.Highlight.Color = color
	}
	if opacity := os.Getenv("DOCMARK_HIGHLIGHT_OPACITY"); opacity != "" {
		if f, err := strconv.ParseFloat(opacity, 64); err == nil {
			config.Highlight.Opacity = f
		}
	}

	// Cover service
	if baseURL := os.Getenv("DOCMARK_COVER_BASE_URL"); baseURL != "" {
		config.Cover.BaseURL = baseURL
	}
	if path := os.Getenv("DOCMARK_COVER_PATH"); path != "" {
		config.Cover.Path = path
	}
	if timeout := os.Getenv("DOCMARK_COVER_TIMEOUT"); timeout != "" {
		config.Cover.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCMARK_COVER_RATE_LIMIT"); rateLimit != "" {
		config.Cover.RateLimit = rateLimit
	}

	// Delivery
	if prefix := os.Getenv("DOCMARK_DELIVERY_FILENAME_PREFIX"); prefix != "" {
		config.Delivery.FilenamePrefix = prefix
	}
	if outputDir := os.Getenv("DOCMARK_DELIVERY_OUTPUT_DIR"); outputDir != "" {
		config.Delivery.OutputDir = outputDir
	}
}

// splitList parses a comma-separated env value, dropping empty entries
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyFlagOverrides applies command-line flag overrides to config
// Flags have highest priority: defaults -> file -> env -> CLI flags
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction reports whether the configured environment is production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// DeepCloneConfig returns a copy of c that shares no slices with the original
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.Upload.AllowedKinds) > 0 {
		clone.Upload.AllowedKinds = make([]string, len(c.Upload.AllowedKinds))
		copy(clone.Upload.AllowedKinds, c.Upload.AllowedKinds)
	}

	return &clone
}
