package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	AssetDir       string `envconfig:"ASSET_DIR" default:"./data/assets"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Scene defaults for new canvases
	SceneMargin        float64 `envconfig:"SCENE_MARGIN" default:"50"`
	SceneDefaultWidth  float64 `envconfig:"SCENE_DEFAULT_WIDTH" default:"2000"`
	SceneDefaultHeight float64 `envconfig:"SCENE_DEFAULT_HEIGHT" default:"2000"`
	SampleScene        bool    `envconfig:"SAMPLE_SCENE" default:"true"`

	// Viewport defaults for new clients
	ViewWidth  float64 `envconfig:"VIEW_WIDTH" default:"1280"`
	ViewHeight float64 `envconfig:"VIEW_HEIGHT" default:"720"`
	ZoomSpeed  float64 `envconfig:"ZOOM_SPEED" default:"0.001"`

	ExportMaxSize int `envconfig:"EXPORT_MAX_SIZE" default:"4096"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ZoomSpeed <= 0 {
		return nil, fmt.Errorf("ZOOM_SPEED must be positive, got %v", cfg.ZoomSpeed)
	}
	if cfg.ExportMaxSize <= 0 {
		return nil, fmt.Errorf("EXPORT_MAX_SIZE must be positive, got %d", cfg.ExportMaxSize)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
