package player

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Settings holds beep engine settings, decoded from the engine's
// free-form config section.
type Settings struct {
	SampleRate       int `mapstructure:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs         int `mapstructure:"buffer_ms" default:"100" validate:"gte=10,lte=1000"`
	PositionUpdateMs int `mapstructure:"position_update_ms" default:"500" validate:"gte=50,lte=5000"`
}

func decodeSettings(raw map[string]any) (Settings, error) {
	var s Settings
	if err := mapstructure.Decode(raw, &s); err != nil {
		return s, errors.Wrap(err, "failed to decode engine settings")
	}
	if err := defaults.Set(&s); err != nil {
		return s, errors.Wrap(err, "failed to set setting defaults")
	}
	if err := validator.New().Struct(&s); err != nil {
		return s, errors.Wrap(err, "invalid engine settings")
	}
	return s, nil
}
