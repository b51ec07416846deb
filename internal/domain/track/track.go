// Package track provides the Track domain entity and its playable handle.
package track

import (
	"bytes"
	"errors"
	"io"
)

// ErrReleased is returned by Open after the handle's resource was released.
var ErrReleased = errors.New("handle has been released")

// Handle is an opaque reference to playable audio data. The underlying
// resource is owned by the playlist containing the track and is freed by
// Release when that playlist is discarded.
type Handle interface {
	// Open returns a fresh reader over the audio data. The caller owns
	// the returned reader and must close it.
	Open() (io.ReadSeekCloser, error)

	// Format returns a lowercase format hint ("mp3", "flac", ...).
	Format() string

	// Release frees the underlying resource. Open must not be called
	// after Release.
	Release()
}

// Track represents a single playable track. Immutable once created.
type Track struct {
	Name   string // display name
	Handle Handle // playable reference, owned by the containing playlist
}

// BytesHandle holds audio data in memory, as produced by archive
// extraction.
type BytesHandle struct {
	data   []byte
	format string
}

// NewBytesHandle creates a handle over in-memory audio data.
func NewBytesHandle(data []byte, format string) *BytesHandle {
	return &BytesHandle{data: data, format: format}
}

// Open returns a reader over the buffered data.
func (h *BytesHandle) Open() (io.ReadSeekCloser, error) {
	if h.data == nil {
		return nil, ErrReleased
	}
	return nopCloser{bytes.NewReader(h.data)}, nil
}

// Format returns the format hint given at creation.
func (h *BytesHandle) Format() string { return h.format }

// Release drops the buffered data.
func (h *BytesHandle) Release() { h.data = nil }

// Size returns the buffered data size in bytes.
func (h *BytesHandle) Size() int { return len(h.data) }

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
