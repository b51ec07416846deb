package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "beep", cfg.Engine.Type)
	assert.Equal(t, 500, cfg.Playback.PositionUpdateMs)
	assert.Equal(t, []string{"mp3", "wav", "flac", "ogg"}, cfg.Archive.AudioExtensions)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
engine:
  type: beep
  settings:
    sample_rate: 48000
playback:
  position_update_ms: 250
library:
  archives:
    - /music/a.zip
    - /music/b.tar.gz
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output) // default fills the gap
	assert.Equal(t, 48000, cfg.Engine.Settings["sample_rate"])
	assert.Equal(t, 250, cfg.Playback.PositionUpdateMs)
	assert.Equal(t, []string{"/music/a.zip", "/music/b.tar.gz"}, cfg.Library.Archives)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "log: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "bad log level",
			content: "log:\n  level: loud\n",
		},
		{
			name:    "position interval too small",
			content: "playback:\n  position_update_ms: 10\n",
		},
		{
			name:    "position interval too large",
			content: "playback:\n  position_update_ms: 60000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRACKBOX_LOG_LEVEL", "warn")
	t.Setenv("TRACKBOX_ENGINE", "mock")

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "mock", cfg.Engine.Type)
}

func TestNormalizedExtensions(t *testing.T) {
	cfg := &Config{}
	cfg.Archive.AudioExtensions = []string{".MP3", "Flac", "ogg"}
	assert.Equal(t, []string{"mp3", "flac", "ogg"}, cfg.NormalizedExtensions())
}
