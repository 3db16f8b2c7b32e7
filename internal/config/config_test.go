package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 50.0, cfg.SceneMargin)
	assert.Equal(t, 2000.0, cfg.SceneDefaultWidth)
	assert.Equal(t, 0.001, cfg.ZoomSpeed)
	assert.True(t, cfg.SampleScene)
	assert.Equal(t, []string{"localhost:5173", "localhost:3000"}, cfg.Origins())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, http://localhost:8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SAMPLE_SCENE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"example.com", "localhost:8080"}, cfg.Origins())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.False(t, cfg.SampleScene)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ZOOM_SPEED", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestSlogLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
