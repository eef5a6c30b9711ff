// Package config loads runpal settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when RUNPAL_CONFIG is unset.
const DefaultPath = "config/runpal.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Viewport ViewportConfig `yaml:"viewport"`
	Render   RenderConfig   `yaml:"render"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	BaseURL         string        `yaml:"base_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// ViewportConfig controls interactive map instances.
type ViewportConfig struct {
	IdleTTL      time.Duration `yaml:"idle_ttl"`
	MaxInstances int           `yaml:"max_instances"`
}

// RenderConfig holds raster export defaults.
type RenderConfig struct {
	PNGWidth    int `yaml:"png_width"`
	Supersample int `yaml:"supersample"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Viewport: ViewportConfig{
			IdleTTL:      30 * time.Minute,
			MaxInstances: 1000,
		},
		Render: RenderConfig{
			PNGWidth:    600,
			Supersample: 4,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnvironment loads .env (if present), then the YAML file named by
// RUNPAL_CONFIG, then applies environment overrides and validates.
func FromEnvironment() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	path := DefaultPath
	if p := strings.TrimSpace(os.Getenv("RUNPAL_CONFIG")); p != "" {
		path = p
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables resolved by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT %q: %v", ErrInvalid, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := get("BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := get("RUNPAL_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get("RUNPAL_LOG_FORMAT"); ok {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := get("RUNPAL_VIEWPORT_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: RUNPAL_VIEWPORT_TTL %q: %v", ErrInvalid, v, err)
		}
		c.Viewport.IdleTTL = ttl
	}
	if v, ok := get("RUNPAL_VIEWPORT_MAX"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RUNPAL_VIEWPORT_MAX %q: %v", ErrInvalid, v, err)
		}
		c.Viewport.MaxInstances = n
	}
	return nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	case c.Server.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalid)
	case c.Server.RequestTimeout <= 0:
		return fmt.Errorf("%w: server.request_timeout must be positive", ErrInvalid)
	case c.Viewport.IdleTTL <= 0:
		return fmt.Errorf("%w: viewport.idle_ttl must be positive", ErrInvalid)
	case c.Viewport.MaxInstances <= 0:
		return fmt.Errorf("%w: viewport.max_instances must be positive", ErrInvalid)
	case c.Render.PNGWidth <= 0:
		return fmt.Errorf("%w: render.png_width must be positive", ErrInvalid)
	case c.Render.Supersample < 1 || c.Render.Supersample > 8:
		return fmt.Errorf("%w: render.supersample %d not in [1, 8]", ErrInvalid, c.Render.Supersample)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
