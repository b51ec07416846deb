package track

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesHandle(t *testing.T) {
	h := NewBytesHandle([]byte("audio"), "mp3")
	assert.Equal(t, "mp3", h.Format())
	assert.Equal(t, 5, h.Size())

	r, err := h.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
	require.NoError(t, r.Close())

	// Each Open returns a fresh reader over the full data.
	r2, err := h.Open()
	require.NoError(t, err)
	data, err = io.ReadAll(r2)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
}

func TestBytesHandle_Release(t *testing.T) {
	h := NewBytesHandle([]byte("audio"), "wav")
	h.Release()

	assert.Equal(t, 0, h.Size())
	_, err := h.Open()
	assert.ErrorIs(t, err, ErrReleased)
}
