// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Playback PlaybackConfig `yaml:"playback"`
	Library  LibraryConfig  `yaml:"library"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
}

// EngineConfig represents playback engine configuration. Settings are
// engine-specific and decoded by the engine factory.
type EngineConfig struct {
	Type     string         `yaml:"type" default:"beep" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// ArchiveConfig represents archive ingestion configuration.
type ArchiveConfig struct {
	// Extensions of archive entries treated as audio tracks.
	AudioExtensions []string `yaml:"audio_extensions" default:"[\"mp3\",\"wav\",\"flac\",\"ogg\"]"`
}

// PlaybackConfig represents playback reporting configuration.
type PlaybackConfig struct {
	PositionUpdateMs int `yaml:"position_update_ms" default:"500" validate:"gte=50,lte=5000"`
}

// LibraryConfig represents the library preloaded at startup.
type LibraryConfig struct {
	// Archive files loaded as playlists on start, in order.
	Archives []string `yaml:"archives"`
}

// Default returns the configuration with all defaults applied.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("TRACKBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TRACKBOX_LOG_OUTPUT"); v != "" {
		c.Log.Output = v
	}
	if v := os.Getenv("TRACKBOX_ENGINE"); v != "" {
		c.Engine.Type = v
	}
}

// NormalizedExtensions returns the configured audio extensions,
// lowercased and without a leading dot.
func (c *Config) NormalizedExtensions() []string {
	result := make([]string, 0, len(c.Archive.AudioExtensions))
	for _, ext := range c.Archive.AudioExtensions {
		result = append(result, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return result
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	if len(c.Archive.AudioExtensions) == 0 {
		return errors.New("archive.audio_extensions must not be empty")
	}
	return nil
}
