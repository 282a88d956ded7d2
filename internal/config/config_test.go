package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "STATIC_DIR", "GEMINI_API_KEY", "GEMINI_MODEL",
		"GEMINI_BASE_URL", "GEMINI_API_VERSION", "AVATAR_PROMPT", "GEMINI_TIMEOUT", "MAX_UPLOAD_BYTES",
		"AVATAR_CAPTION", "AVATAR_CANVAS_SIZE", "MAX_IMAGE_PIXELS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Equal(t, DefaultModel, cfg.Gemini.Model)
	assert.Equal(t, DefaultBaseURL, cfg.Gemini.BaseURL)
	assert.Equal(t, "v1beta", cfg.Gemini.APIVersion)
	assert.Equal(t, DefaultTimeout, cfg.Gemini.Timeout)
	assert.Equal(t, DefaultPrompt, cfg.Gemini.Prompt)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, ComposeConfig{
		CanvasSize:     DefaultCanvasSize,
		Caption:        DefaultCaption,
		MaxImagePixels: DefaultMaxImagePixels,
	}, cfg.Compose)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Gemini.Model)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "avatar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
log_level: debug
gemini:
  api_key: from-file
  model: gemini-2.5-flash-image
  timeout: 30s
compose:
  caption: Mumbai Local
  max_image_pixels: 1000
`), 0o600))

	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("MAX_IMAGE_PIXELS", "-1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.Model)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "Mumbai Local", cfg.Compose.Caption)
	assert.Equal(t, DefaultCanvasSize, cfg.Compose.CanvasSize)
	assert.Equal(t, -1, cfg.Compose.MaxImagePixels)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_TIMEOUT", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "GEMINI_TIMEOUT")

	clearEnv(t)
	t.Setenv("MAX_IMAGE_PIXELS", "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, "MAX_IMAGE_PIXELS")

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
