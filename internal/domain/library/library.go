// Package library provides the append-only store of playlists and tracks.
package library

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"trackbox/internal/domain/track"
)

// Errors
var (
	ErrEmptyPlaylist = errors.New("playlist has no tracks")
	ErrOutOfRange    = errors.New("index out of range")
)

// Playlist is an immutable named, ordered collection of tracks. Track
// order is fixed at construction: case-insensitive name order, ties
// keeping their original relative order.
type Playlist struct {
	ID     string // assigned at creation
	Name   string
	tracks []track.Track
}

func newPlaylist(name string, tracks []track.Track) *Playlist {
	sorted := make([]track.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return &Playlist{
		ID:     uuid.New().String(),
		Name:   name,
		tracks: sorted,
	}
}

// Track returns the track at the given index.
func (p *Playlist) Track(index int) (track.Track, error) {
	if index < 0 || index >= len(p.tracks) {
		return track.Track{}, errors.Wrapf(ErrOutOfRange, "track index %d (playlist %q has %d tracks)", index, p.Name, len(p.tracks))
	}
	return p.tracks[index], nil
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []track.Track {
	result := make([]track.Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// TrackNames returns the track display names in playlist order.
func (p *Playlist) TrackNames() []string {
	return lo.Map(p.tracks, func(t track.Track, _ int) string { return t.Name })
}

// Len returns the number of tracks.
func (p *Playlist) Len() int { return len(p.tracks) }

// Release frees the playable resources of every track. The playlist must
// not be used for playback afterwards.
func (p *Playlist) Release() {
	for _, t := range p.tracks {
		if t.Handle != nil {
			t.Handle.Release()
		}
	}
}

// Library is an append-only ordered collection of playlists. Playlist
// indices are stable for the library's lifetime.
type Library struct {
	mu        sync.RWMutex
	playlists []*Playlist
}

// New creates an empty library.
func New() *Library {
	return &Library{playlists: make([]*Playlist, 0)}
}

// AddPlaylist appends a new playlist built from the given tracks, sorted
// by case-insensitive name. Returns the index assigned to the playlist.
// An empty track set is rejected with ErrEmptyPlaylist and the library is
// left unchanged.
func (l *Library) AddPlaylist(name string, tracks []track.Track) (int, error) {
	if len(tracks) == 0 {
		return 0, errors.Wrapf(ErrEmptyPlaylist, "playlist %q", name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.playlists = append(l.playlists, newPlaylist(name, tracks))
	return len(l.playlists) - 1, nil
}

// Resolve returns the track at (playlistIndex, trackIndex), or
// ErrOutOfRange if either index is invalid.
func (l *Library) Resolve(playlistIndex, trackIndex int) (track.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if playlistIndex < 0 || playlistIndex >= len(l.playlists) {
		return track.Track{}, errors.Wrapf(ErrOutOfRange, "playlist index %d (library has %d playlists)", playlistIndex, len(l.playlists))
	}
	return l.playlists[playlistIndex].Track(trackIndex)
}

// Playlist returns the playlist at the given index.
func (l *Library) Playlist(index int) (*Playlist, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.playlists) {
		return nil, errors.Wrapf(ErrOutOfRange, "playlist index %d (library has %d playlists)", index, len(l.playlists))
	}
	return l.playlists[index], nil
}

// Playlists returns a copy of the playlist list.
func (l *Library) Playlists() []*Playlist {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Playlist, len(l.playlists))
	copy(result, l.playlists)
	return result
}

// Len returns the number of playlists.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.playlists)
}

// Release frees the playable resources of every playlist.
func (l *Library) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.playlists {
		p.Release()
	}
}
