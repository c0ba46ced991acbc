package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/geometry"
	"github.com/inamate/rim/internal/viewport"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	JWTSecret      string `envconfig:"JWT_SECRET"` // empty leaves the stream open
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	ViewWidth  float64 `envconfig:"VIEW_WIDTH" default:"1200"`
	ViewHeight float64 `envconfig:"VIEW_HEIGHT" default:"800"`
	Scale      float64 `envconfig:"VIEW_SCALE" default:"50"`
	MinScale   float64 `envconfig:"VIEW_MIN_SCALE" default:"5"`
	MaxScale   float64 `envconfig:"VIEW_MAX_SCALE" default:"500"`
	ZoomFactor float64 `envconfig:"VIEW_ZOOM_FACTOR" default:"1.1"`

	FPS             int     `envconfig:"FPS" default:"60"`
	TickMinPixels   float64 `envconfig:"TICK_MIN_PIXELS" default:"40"`
	CircleTolerance float64 `envconfig:"CIRCLE_TOLERANCE" default:"0.5"`
	PresetPath      string  `envconfig:"PRESET_PATH"` // empty loads the built-in scene
	WatchPreset     bool    `envconfig:"WATCH_PRESET" default:"true"`
	PresetDir       string  `envconfig:"PRESET_DIR" default:"./presets"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return nil, fmt.Errorf("FPS must be in [1, 240], got %d", cfg.FPS)
	}
	return &cfg, nil
}

// Viewport returns the coordinate transform options.
func (c *Config) Viewport() viewport.Options {
	return viewport.Options{
		Width:      c.ViewWidth,
		Height:     c.ViewHeight,
		Scale:      c.Scale,
		MinScale:   c.MinScale,
		MaxScale:   c.MaxScale,
		ZoomFactor: c.ZoomFactor,
	}
}

// Engine returns the scene engine options.
func (c *Config) Engine() engine.Options {
	opts := engine.DefaultOptions()
	opts.Geometry = geometry.DefaultOptions()
	opts.Geometry.MinTickPixels = c.TickMinPixels
	opts.Geometry.CircleTolerance = c.CircleTolerance
	return opts
}

// Origins splits AllowedOrigins into its comma separated entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
