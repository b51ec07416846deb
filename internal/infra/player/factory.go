package player

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/app/engine"
)

// FromConfig creates a playback engine from configuration.
func FromConfig(engineType string, settings map[string]any) (engine.Engine, error) {
	switch engineType {
	case "beep", "":
		eng, err := New(settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create beep engine")
		}
		zlog.Info().Msgf("player: beep engine ready: sample_rate=%d buffer_ms=%d",
			eng.settings.SampleRate, eng.settings.BufferMs)
		return eng, nil
	default:
		return nil, errors.Newf("unsupported engine type: %s", engineType)
	}
}
