package engine

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/domain/track"
)

// Adapter enforces the command contract at the engine boundary:
//
//   - Load is issued exactly once per selection change, always before Play.
//   - Play and Pause are idempotent: re-issuing the current mode is a
//     no-op at the boundary.
//   - Seek is ignored until the engine has reported a finite duration for
//     the loaded track.
//
// Engine events are pumped into Callbacks by Run.
type Adapter struct {
	mu  sync.Mutex
	eng Engine

	loadedPlaylist int
	loadedTrack    int
	playing        bool
	duration       float64 // 0 until the engine reports it
}

// NewAdapter creates an adapter around the given engine.
func NewAdapter(eng Engine) *Adapter {
	return &Adapter{
		eng:            eng,
		loadedPlaylist: -1,
		loadedTrack:    -1,
	}
}

// SetTrack loads the handle if (playlistIndex, trackIndex) differs from
// the last loaded selection. Unrelated state changes never reload.
func (a *Adapter) SetTrack(playlistIndex, trackIndex int, h track.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if playlistIndex == a.loadedPlaylist && trackIndex == a.loadedTrack {
		return nil
	}

	if err := a.eng.Load(h); err != nil {
		return errors.Wrapf(err, "load track (%d, %d)", playlistIndex, trackIndex)
	}

	a.loadedPlaylist = playlistIndex
	a.loadedTrack = trackIndex
	a.playing = false
	a.duration = 0
	return nil
}

// SetPlaying drives the engine to the requested mode. Issuing the current
// mode is a no-op.
func (a *Adapter) SetPlaying(playing bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loadedPlaylist < 0 {
		return nil
	}
	if playing == a.playing {
		return nil
	}

	var err error
	if playing {
		err = a.eng.Play()
	} else {
		err = a.eng.Pause()
	}
	if err != nil {
		return errors.Wrap(err, "set playing")
	}
	a.playing = playing
	return nil
}

// InvalidateLoaded forgets the loaded selection so the next SetTrack
// reloads even for the same (playlist, track). Called after the engine
// reports end-of-track: the stream has been consumed and replaying it
// requires a fresh load.
func (a *Adapter) InvalidateLoaded() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.loadedPlaylist = -1
	a.loadedTrack = -1
	a.playing = false
	a.duration = 0
}

// Seek moves playback to the given offset. A no-op while no track is
// loaded or the duration is not yet known.
func (a *Adapter) Seek(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loadedPlaylist < 0 || a.duration <= 0 {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > a.duration {
		seconds = a.duration
	}
	if err := a.eng.Seek(seconds); err != nil {
		zlog.Warn().Err(err).Msgf("engine: seek to %.1fs failed", seconds)
	}
}

// Run pumps engine events into cb until the engine's event channel closes
// or ctx is cancelled. Position and duration reports only update advisory
// state; EventEnded is the sole trigger for the automatic-advance path.
func (a *Adapter) Run(ctx context.Context, cb Callbacks) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.eng.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case EventDurationKnown:
				a.mu.Lock()
				a.duration = ev.Seconds // last value wins
				a.mu.Unlock()
				cb.OnDurationKnown(ev.Seconds)
			case EventPosition:
				cb.OnPositionUpdate(ev.Seconds)
			case EventEnded:
				cb.OnEnded()
			}
		}
	}
}

// Close closes the underlying engine.
func (a *Adapter) Close() error {
	return a.eng.Close()
}
