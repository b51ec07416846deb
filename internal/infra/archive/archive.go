// Package archive turns uploaded container files into sets of named,
// independently playable audio tracks.
package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/mholt/archives"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"trackbox/internal/domain/track"
)

// ErrUnreadableArchive is returned when the container cannot be
// identified or traversed.
var ErrUnreadableArchive = errors.New("unreadable archive")

// Reader extracts audio tracks from archive files. Entries whose
// extension is not in the audio allow-list are skipped.
type Reader struct {
	exts map[string]struct{}
}

// NewReader creates a reader accepting the given audio extensions
// (lowercase, no leading dot).
func NewReader(audioExtensions []string) *Reader {
	return &Reader{
		exts: lo.SliceToMap(audioExtensions, func(ext string) (string, struct{}) {
			return strings.ToLower(strings.TrimPrefix(ext, ".")), struct{}{}
		}),
	}
}

// Extract reads the archive at path and returns one track per audio
// entry, each with its data buffered in memory. A readable archive with
// no audio entries yields an empty set, not an error.
func (r *Reader) Extract(ctx context.Context, archivePath string) ([]track.Track, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableArchive, "open %s: %v", archivePath, err)
	}
	defer f.Close()

	return r.extract(ctx, filepath.Base(archivePath), f)
}

// ExtractStream reads an archive from src. The name is used as a format
// identification hint.
func (r *Reader) ExtractStream(ctx context.Context, name string, src io.Reader) ([]track.Track, error) {
	// Buffer the stream so seekable formats (zip, 7z) can rewind.
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableArchive, "read %s: %v", name, err)
	}
	return r.extract(ctx, name, bytes.NewReader(data))
}

func (r *Reader) extract(ctx context.Context, name string, src io.ReadSeeker) ([]track.Track, error) {
	format, input, err := archives.Identify(ctx, name, src)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableArchive, "identify %s: %v", name, err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, errors.Wrapf(ErrUnreadableArchive, "%s: format %s does not support extraction", name, format.Extension())
	}

	// Seekable formats need the original reader, rewound.
	reader := io.Reader(input)
	switch format.(type) {
	case archives.Zip, archives.SevenZip:
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrapf(ErrUnreadableArchive, "rewind %s: %v", name, err)
		}
		reader = src
	}

	var tracks []track.Track
	err = extractor.Extract(ctx, reader, func(ctx context.Context, f archives.FileInfo) error {
		if f.IsDir() {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.NameInArchive), "."))
		if _, ok := r.exts[ext]; !ok {
			zlog.Debug().Msgf("archive: skipping non-audio entry %s", f.NameInArchive)
			return nil
		}

		rc, err := f.Open()
		if err != nil {
			return errors.Wrapf(err, "open entry %s", f.NameInArchive)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return errors.Wrapf(err, "read entry %s", f.NameInArchive)
		}

		tracks = append(tracks, track.Track{
			Name:   displayName(f.NameInArchive, data),
			Handle: track.NewBytesHandle(data, ext),
		})
		return nil
	})
	if err != nil {
		// Partial results are useless: the caller must not build a
		// playlist from a half-read container.
		for _, t := range tracks {
			t.Handle.Release()
		}
		return nil, errors.Wrapf(ErrUnreadableArchive, "extract %s: %v", name, err)
	}

	zlog.Info().Msgf("archive: extracted %d audio tracks from %s", len(tracks), name)
	return tracks, nil
}

// displayName prefers the tagged title and falls back to the file stem.
func displayName(nameInArchive string, data []byte) string {
	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		if title := strings.TrimSpace(meta.Title()); title != "" {
			return title
		}
	}
	base := path.Base(nameInArchive)
	return strings.TrimSuffix(base, path.Ext(base))
}
