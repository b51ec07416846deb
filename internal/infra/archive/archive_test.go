package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractStream(t *testing.T) {
	r := NewReader([]string{"mp3", "ogg"})

	data := buildZip(t, map[string][]byte{
		"album/01 - intro.mp3": []byte("not really mpeg"),
		"album/02 - outro.ogg": []byte("not really vorbis"),
		"album/cover.jpg":      []byte("not audio"),
		"album/notes.txt":      []byte("liner notes"),
	})

	tracks, err := r.ExtractStream(context.Background(), "album.zip", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	names := []string{tracks[0].Name, tracks[1].Name}
	assert.Contains(t, names, "01 - intro")
	assert.Contains(t, names, "02 - outro")

	// Handles serve back the entry bytes.
	for _, tr := range tracks {
		rc, err := tr.Handle.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.NotEmpty(t, got)
	}
}

func TestExtract_File(t *testing.T) {
	r := NewReader([]string{"mp3"})

	data := buildZip(t, map[string][]byte{"song.mp3": []byte("x")})
	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, data, 0644))

	tracks, err := r.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "song", tracks[0].Name)
	assert.Equal(t, "mp3", tracks[0].Handle.Format())
}

func TestExtract_NoAudioEntries(t *testing.T) {
	r := NewReader([]string{"mp3"})

	data := buildZip(t, map[string][]byte{
		"readme.txt": []byte("hello"),
		"image.png":  []byte("png"),
	})

	tracks, err := r.ExtractStream(context.Background(), "docs.zip", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestExtract_UnreadableInput(t *testing.T) {
	r := NewReader([]string{"mp3"})

	_, err := r.ExtractStream(context.Background(), "noise.zip", bytes.NewReader([]byte("definitely not an archive")))
	assert.ErrorIs(t, err, ErrUnreadableArchive)
}

func TestExtract_MissingFile(t *testing.T) {
	r := NewReader([]string{"mp3"})

	_, err := r.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.zip"))
	assert.ErrorIs(t, err, ErrUnreadableArchive)
}

func TestExtensionMatchingIsCaseInsensitive(t *testing.T) {
	r := NewReader([]string{".MP3"})

	data := buildZip(t, map[string][]byte{"LOUD.MP3": []byte("x")})
	tracks, err := r.ExtractStream(context.Background(), "a.zip", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}
