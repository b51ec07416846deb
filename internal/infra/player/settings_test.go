package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected Settings
		wantErr  bool
	}{
		{
			name:     "nil settings use defaults",
			raw:      nil,
			expected: Settings{SampleRate: 44100, BufferMs: 100, PositionUpdateMs: 500},
		},
		{
			name: "partial settings keep other defaults",
			raw:  map[string]any{"sample_rate": 48000},
			expected: Settings{
				SampleRate:       48000,
				BufferMs:         100,
				PositionUpdateMs: 500,
			},
		},
		{
			name:    "sample rate too low",
			raw:     map[string]any{"sample_rate": 100},
			wantErr: true,
		},
		{
			name:    "buffer out of range",
			raw:     map[string]any{"buffer_ms": 5000},
			wantErr: true,
		},
		{
			name:    "wrong value type",
			raw:     map[string]any{"sample_rate": "fast"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := decodeSettings(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestFromConfig_UnsupportedType(t *testing.T) {
	_, err := FromConfig("gramophone", nil)
	assert.Error(t, err)
}
