package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the project file looked up when no path is given.
const DefaultPath = "raidplan.yaml"

type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Editor EditorConfig `yaml:"editor"`
	Window WindowConfig `yaml:"window"`
}

type StoreConfig struct {
	DSN string `yaml:"dsn" env:"RAIDPLAN_STORE_DSN"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"RAIDPLAN_LOG_LEVEL"`
	Format string `yaml:"format" env:"RAIDPLAN_LOG_FORMAT"`
}

type EditorConfig struct {
	TransitionMS     int     `yaml:"transition_ms" env:"RAIDPLAN_EDITOR_TRANSITION_MS"`
	HandleDistancePx float64 `yaml:"handle_distance_px" env:"RAIDPLAN_EDITOR_HANDLE_DISTANCE_PX"`
	HandleRadiusPx   float64 `yaml:"handle_radius_px" env:"RAIDPLAN_EDITOR_HANDLE_RADIUS_PX"`
	MaxUndoDepth     int     `yaml:"max_undo_depth" env:"RAIDPLAN_EDITOR_MAX_UNDO_DEPTH"`
}

type WindowConfig struct {
	Title  string `yaml:"title" env:"RAIDPLAN_WINDOW_TITLE"`
	Width  int    `yaml:"width" env:"RAIDPLAN_WINDOW_WIDTH"`
	Height int    `yaml:"height" env:"RAIDPLAN_WINDOW_HEIGHT"`
}

// Default returns the configuration used when no project file exists.
func Default() Config {
	return Config{
		Store: StoreConfig{DSN: "sqlite://raidplan.db"},
		Log:   LogConfig{Level: "info", Format: "text"},
		Editor: EditorConfig{
			TransitionMS:     300,
			HandleDistancePx: 24,
			HandleRadiusPx:   8,
		},
		Window: WindowConfig{Title: "raidplan", Width: 1280, Height: 800},
	}
}

// Load reads the YAML project file at path over the defaults, applies
// RAIDPLAN_* environment overrides and validates the result. A missing file
// is not an error when allowMissing is set.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && allowMissing:
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Write stores cfg as YAML at path, refusing to overwrite an existing file.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	return f.Close()
}

func validateConfig(cfg *Config) error {
	dsn := strings.TrimSpace(cfg.Store.DSN)
	if dsn == "" {
		return fmt.Errorf("store dsn is required")
	}
	if !strings.HasPrefix(dsn, "sqlite://") &&
		!strings.HasPrefix(dsn, "postgres://") &&
		!strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("unsupported store dsn scheme: %s", dsn)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", cfg.Log.Format)
	}
	if cfg.Editor.TransitionMS < 0 {
		return fmt.Errorf("editor transition_ms must not be negative")
	}
	if cfg.Editor.HandleDistancePx < 0 || cfg.Editor.HandleRadiusPx < 0 {
		return fmt.Errorf("editor handle sizes must not be negative")
	}
	if cfg.Editor.MaxUndoDepth < 0 {
		return fmt.Errorf("editor max_undo_depth must not be negative")
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	return nil
}
