package sequencer

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/app/engine"
	"trackbox/internal/app/queue"
	"trackbox/internal/domain/library"
	"trackbox/internal/domain/track"
)

// ErrNoPlaylistSelected is returned by navigation commands when nothing
// is selected.
var ErrNoPlaylistSelected = errors.New("no playlist selected")

// Sequencer applies navigation commands and the automatic-advance rule.
//
// All mutations run under one mutex: user actions and engine callbacks
// are applied as atomic, non-interleaved transitions. Every command
// completes synchronously; asynchrony lives at the engine boundary and
// comes back in through the adapter's event pump.
type Sequencer struct {
	mu sync.Mutex

	lib     *library.Library
	queue   *queue.Queue
	adapter *engine.Adapter

	status  Status
	sel     Selection
	current *track.Track

	// Advisory engine metrics; never drive transitions.
	position float64
	duration float64

	subMu sync.RWMutex
	subs  map[string]chan Event
}

// New creates a stopped sequencer with an empty selection.
func New(lib *library.Library, q *queue.Queue, adapter *engine.Adapter) *Sequencer {
	return &Sequencer{
		lib:     lib,
		queue:   q,
		adapter: adapter,
		status:  StatusStopped,
		sel:     NoSelection(),
		subs:    make(map[string]chan Event),
	}
}

// Run pumps engine events into the sequencer until ctx is cancelled or
// the engine closes.
func (s *Sequencer) Run(ctx context.Context) {
	s.adapter.Run(ctx, s)
}

// SelectPlaylist selects the playlist at the given index and starts
// playing its first track. Selecting the already selected playlist is a
// no-op.
func (s *Sequencer) SelectPlaylist(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate before the no-op check: with an empty selection the
	// sentinel index must not be mistaken for "already selected".
	tr, err := s.lib.Resolve(index, 0)
	if err != nil {
		return err
	}
	if index == s.sel.Playlist {
		return nil
	}
	s.applySelectionLocked(Selection{Playlist: index, Track: 0}, tr)
	return nil
}

// SelectTrack selects the track at the given index within the selected
// playlist and starts playing it.
func (s *Sequencer) SelectTrack(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.IsNone() {
		return ErrNoPlaylistSelected
	}
	tr, err := s.lib.Resolve(s.sel.Playlist, index)
	if err != nil {
		return err
	}
	s.applySelectionLocked(Selection{Playlist: s.sel.Playlist, Track: index}, tr)
	return nil
}

// TogglePlayPause flips Playing and Paused. A no-op when nothing is
// selected. Returns the resulting status.
func (s *Sequencer) TogglePlayPause() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.IsNone() {
		return s.status
	}

	switch s.status {
	case StatusPlaying:
		s.status = StatusPaused
		s.driveEngineLocked(false)
	case StatusPaused, StatusStopped:
		s.status = StatusPlaying
		s.driveEngineLocked(true)
	}

	s.broadcastLocked(EventStatusChanged)
	return s.status
}

// Advance moves the selection one track forward or backward within the
// selected playlist, wrapping around at either end. Manual navigation
// never consults the queue.
func (s *Sequencer) Advance(dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.IsNone() {
		return ErrNoPlaylistSelected
	}

	p, err := s.lib.Playlist(s.sel.Playlist)
	if err != nil {
		return err
	}

	n := p.Len()
	var next int
	if dir == Next {
		next = (s.sel.Track + 1) % n
	} else {
		next = (s.sel.Track - 1 + n) % n
	}

	tr, err := p.Track(next)
	if err != nil {
		return err
	}
	s.applySelectionLocked(Selection{Playlist: s.sel.Playlist, Track: next}, tr)
	return nil
}

// AddPlaylist grows the library with a new playlist and notifies
// subscribers. Existing indices, the selection and the queue are
// unaffected.
func (s *Sequencer) AddPlaylist(name string, tracks []track.Track) (int, error) {
	index, err := s.lib.AddPlaylist(name, tracks)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(EventLibraryChanged)
	return index, nil
}

// Enqueue appends a (playlist, track) reference to the play queue.
func (s *Sequencer) Enqueue(playlistIndex, trackIndex int) (int, error) {
	pos, err := s.queue.Enqueue(playlistIndex, trackIndex)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(EventQueueChanged)
	return pos, nil
}

// DequeueAt removes the queue entry at the given position.
func (s *Sequencer) DequeueAt(position int) error {
	if err := s.queue.DequeueAt(position); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(EventQueueChanged)
	return nil
}

// OnTrackEnded applies the automatic-advance rule after a natural
// end-of-track: the queue head preempts normal sequencing; with an empty
// queue the selection wraps to the next track of the selected playlist.
// This is the only path that consumes the queue, exactly one entry per
// completion.
func (s *Sequencer) OnTrackEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.IsNone() {
		return
	}

	// The engine ran the loaded track to its end; whatever plays next
	// must be loaded again, even if it is the same track.
	s.adapter.InvalidateLoaded()

	if entry, ok := s.queue.PopFront(); ok {
		tr, err := s.lib.Resolve(entry.Playlist, entry.Track)
		if err == nil {
			zlog.Debug().Msgf("sequencer: track ended, playing queued (%d, %d)", entry.Playlist, entry.Track)
			s.applySelectionLocked(Selection{Playlist: entry.Playlist, Track: entry.Track}, tr)
			s.broadcastLocked(EventQueueChanged)
			return
		}
		// Playlists are never removed, so a queued entry going stale
		// means a caller bypassed Enqueue validation.
		zlog.Warn().Err(err).Msgf("sequencer: dropping stale queue entry (%d, %d)", entry.Playlist, entry.Track)
	}

	p, err := s.lib.Playlist(s.sel.Playlist)
	if err != nil {
		zlog.Warn().Err(err).Msg("sequencer: selected playlist vanished")
		return
	}
	next := (s.sel.Track + 1) % p.Len()
	tr, err := p.Track(next)
	if err != nil {
		return
	}
	zlog.Debug().Msgf("sequencer: track ended, advancing to (%d, %d)", s.sel.Playlist, next)
	s.applySelectionLocked(Selection{Playlist: s.sel.Playlist, Track: next}, tr)
}

// Seek moves playback to the given offset in seconds. A defined no-op
// while nothing is selected or the engine has not reported a duration.
func (s *Sequencer) Seek(seconds float64) {
	s.mu.Lock()
	selected := !s.sel.IsNone()
	s.mu.Unlock()

	if !selected {
		return
	}
	s.adapter.Seek(seconds)
}

// Engine callbacks (engine.Callbacks). Position and duration reports are
// advisory metrics only; OnEnded is the sole trigger for automatic
// advance.

func (s *Sequencer) OnDurationKnown(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = seconds // last value wins
}

func (s *Sequencer) OnPositionUpdate(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
}

func (s *Sequencer) OnEnded() {
	s.OnTrackEnded()
}

// Read accessors

// Status returns the current playback status.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Selection returns the current selection.
func (s *Sequencer) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// CurrentTrack returns the currently selected track.
func (s *Sequencer) CurrentTrack() (track.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return track.Track{}, false
	}
	return *s.current, true
}

// Position returns the last engine-reported position in seconds.
func (s *Sequencer) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the last engine-reported duration in seconds, 0 while
// unknown.
func (s *Sequencer) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Library returns the backing library.
func (s *Sequencer) Library() *library.Library { return s.lib }

// QueueEntries returns the queued entries in order.
func (s *Sequencer) QueueEntries() []queue.Entry { return s.queue.Entries() }

// Subscribe registers an event subscriber and returns its id and channel.
// Slow subscribers drop events rather than block transitions.
func (s *Sequencer) Subscribe() (string, <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, 16)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Sequencer) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Close removes all subscribers.
func (s *Sequencer) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// applySelectionLocked moves the selection, drives the engine (load
// before play, once per selection change) and transitions to Playing.
// Must be called with the mutex held and a track resolved from the
// target selection.
func (s *Sequencer) applySelectionLocked(sel Selection, tr track.Track) {
	prevStatus := s.status

	s.sel = sel
	s.current = &tr
	s.position = 0
	s.duration = 0
	s.status = StatusPlaying

	if err := s.adapter.SetTrack(sel.Playlist, sel.Track, tr.Handle); err != nil {
		zlog.Warn().Err(err).Msgf("sequencer: engine load failed for (%d, %d)", sel.Playlist, sel.Track)
	}
	s.driveEngineLocked(true)

	s.broadcastLocked(EventTrackChanged)
	if prevStatus != StatusPlaying {
		s.broadcastLocked(EventStatusChanged)
	}
}

// driveEngineLocked issues the play/pause intent; engine refusal is
// logged, not surfaced, since logical state is the source of truth.
func (s *Sequencer) driveEngineLocked(playing bool) {
	if err := s.adapter.SetPlaying(playing); err != nil {
		zlog.Warn().Err(err).Msgf("sequencer: engine transition failed (playing=%v)", playing)
	}
}

// broadcastLocked sends an event to all subscribers without blocking.
func (s *Sequencer) broadcastLocked(typ EventType) {
	ev := Event{
		Type:      typ,
		Selection: s.sel,
		Track:     s.current,
		Status:    s.status,
	}

	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}
