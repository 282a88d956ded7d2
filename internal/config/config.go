// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort           = "8080"
	DefaultModel          = "gemini-3-pro-image-preview"
	DefaultBaseURL        = "https://generativelanguage.googleapis.com"
	DefaultAPIVersion     = "v1beta"
	DefaultTimeout        = 120 * time.Second
	DefaultMaxUploadBytes = 20 << 20
	DefaultCanvasSize     = 1080
	DefaultCaption        = "ETHMumbai Style"
	DefaultMaxImagePixels = 40_000_000
)

// DefaultPrompt is the styling instruction sent when the caller gives none.
const DefaultPrompt = "Restyle this portrait into an ETHMumbai-branded avatar: BEST Red (#e2231a), Bus Black (#1c1c1c), ETH Blue (#3fa9f5), Bus Yellow (#ffd600), Bus Green (#00a859). Add subtle BEST bus or Mumbai skyline cues. Keep likeness. Bright, friendly finish."

// Config is the resolved service configuration.
type Config struct {
	Port           string        `yaml:"port"`
	GinMode        string        `yaml:"gin_mode"`
	LogLevel       string        `yaml:"log_level"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	Gemini         GeminiConfig  `yaml:"gemini"`
	Compose        ComposeConfig `yaml:"compose"`
	StaticDir      string        `yaml:"static_dir"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// GeminiConfig describes the upstream generation API.
type GeminiConfig struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
	Prompt     string        `yaml:"prompt"`
}

// ComposeConfig describes the exported avatar.
type ComposeConfig struct {
	CanvasSize int    `yaml:"canvas_size"`
	Caption    string `yaml:"caption"`
	// MaxImagePixels caps width*height of any decoded source image. A
	// negative value disables the check.
	MaxImagePixels int `yaml:"max_image_pixels"`
}

// Load reads path (if non-empty) and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// FromEnv loads configuration from AVATAR_CONFIG (if set) and the
// environment.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("AVATAR_CONFIG"))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("PORT", &c.Port)
	str("GIN_MODE", &c.GinMode)
	str("LOG_LEVEL", &c.LogLevel)
	str("STATIC_DIR", &c.StaticDir)
	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("GEMINI_MODEL", &c.Gemini.Model)
	str("GEMINI_BASE_URL", &c.Gemini.BaseURL)
	str("GEMINI_API_VERSION", &c.Gemini.APIVersion)
	str("AVATAR_PROMPT", &c.Gemini.Prompt)
	str("AVATAR_CAPTION", &c.Compose.Caption)

	if v, ok := lookup("GEMINI_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "GEMINI_TIMEOUT")
		}
		c.Gemini.Timeout = d
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "MAX_UPLOAD_BYTES")
		}
		c.MaxUploadBytes = n
	}
	for key, dst := range map[string]*int{
		"AVATAR_CANVAS_SIZE": &c.Compose.CanvasSize,
		"MAX_IMAGE_PIXELS":   &c.Compose.MaxImagePixels,
	} {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(err, key)
			}
			*dst = n
		}
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.StaticDir == "" {
		c.StaticDir = "web/static"
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultModel
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = DefaultBaseURL
	}
	if c.Gemini.APIVersion == "" {
		c.Gemini.APIVersion = DefaultAPIVersion
	}
	// A negative timeout disables the deadline entirely.
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = DefaultTimeout
	}
	if c.Gemini.Prompt == "" {
		c.Gemini.Prompt = DefaultPrompt
	}
	if c.Compose.CanvasSize == 0 {
		c.Compose.CanvasSize = DefaultCanvasSize
	}
	if c.Compose.Caption == "" {
		c.Compose.Caption = DefaultCaption
	}
	if c.Compose.MaxImagePixels == 0 {
		c.Compose.MaxImagePixels = DefaultMaxImagePixels
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns the JSON slog logger used by the service.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
