// Package player implements the playback engine on top of gopxl/beep:
// it decodes loaded tracks, drives the speaker, and reports duration,
// position and end-of-track through the engine event channel.
package player

import (
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/app/engine"
	"trackbox/internal/domain/track"
)

// ErrNoTrackLoaded is returned by commands issued before Load.
var ErrNoTrackLoaded = errors.New("no track loaded")

// Engine is a beep-backed playback engine. One track is loaded at a
// time; loading replaces whatever was playing.
type Engine struct {
	settings Settings
	rate     beep.SampleRate
	events   chan engine.Event

	mu           sync.Mutex
	speakerReady bool
	source       io.ReadSeekCloser
	streamer     beep.StreamSeekCloser
	format       beep.Format
	ctrl         *beep.Ctrl
	stopTicker   chan struct{}
	generation   uint64 // invalidates callbacks from replaced loads
	closed       bool
}

// New creates an engine from the raw settings map.
func New(rawSettings map[string]any) (*Engine, error) {
	settings, err := decodeSettings(rawSettings)
	if err != nil {
		return nil, err
	}
	return &Engine{
		settings: settings,
		rate:     beep.SampleRate(settings.SampleRate),
		events:   make(chan engine.Event, 32),
	}, nil
}

// Load decodes the handle and parks it paused at the speaker. Emits
// DurationKnown once the stream length is measured.
func (e *Engine) Load(h track.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.New("engine closed")
	}

	src, err := h.Open()
	if err != nil {
		return errors.Wrap(err, "open handle")
	}

	streamer, format, err := decode(h.Format(), src)
	if err != nil {
		src.Close()
		return err
	}

	if !e.speakerReady {
		if err := speaker.Init(e.rate, e.rate.N(time.Duration(e.settings.BufferMs)*time.Millisecond)); err != nil {
			streamer.Close()
			src.Close()
			return errors.Wrap(err, "init speaker")
		}
		e.speakerReady = true
	}

	e.unloadLocked()

	e.generation++
	gen := e.generation
	e.source = src
	e.streamer = streamer
	e.format = format
	e.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, format.SampleRate, e.rate, streamer),
		Paused:   true,
	}

	e.emitLocked(engine.Event{
		Type:    engine.EventDurationKnown,
		Seconds: format.SampleRate.D(streamer.Len()).Seconds(),
	})

	// The callback fires on the speaker goroutine; taking e.mu there
	// would invert the lock order against setPaused.
	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		go func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if gen == e.generation {
				e.emitLocked(engine.Event{Type: engine.EventEnded})
			}
		}()
	})))

	e.stopTicker = make(chan struct{})
	go e.reportPosition(gen, e.stopTicker)

	return nil
}

// Play resumes the loaded track.
func (e *Engine) Play() error {
	return e.setPaused(false)
}

// Pause suspends the loaded track.
func (e *Engine) Pause() error {
	return e.setPaused(true)
}

func (e *Engine) setPaused(paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil {
		return ErrNoTrackLoaded
	}
	speaker.Lock()
	e.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

// Seek moves the playback position.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return ErrNoTrackLoaded
	}

	n := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if limit := e.streamer.Len(); n > limit {
		n = limit
	}

	speaker.Lock()
	err := e.streamer.Seek(n)
	speaker.Unlock()
	return errors.Wrapf(err, "seek to %.1fs", seconds)
}

// Events returns the engine event channel.
func (e *Engine) Events() <-chan engine.Event { return e.events }

// Close stops playback and releases the loaded track.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.unloadLocked()
	if e.speakerReady {
		speaker.Clear()
	}
	close(e.events)
	return nil
}

// unloadLocked detaches the current track, if any.
func (e *Engine) unloadLocked() {
	if e.stopTicker != nil {
		close(e.stopTicker)
		e.stopTicker = nil
	}
	if e.speakerReady && e.ctrl != nil {
		speaker.Clear()
	}
	if e.streamer != nil {
		if err := e.streamer.Close(); err != nil {
			zlog.Debug().Err(err).Msg("player: closing streamer")
		}
		e.streamer = nil
	}
	if e.source != nil {
		_ = e.source.Close()
		e.source = nil
	}
	e.ctrl = nil
}

// reportPosition emits position events until the load is replaced.
func (e *Engine) reportPosition(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(e.settings.PositionUpdateMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.closed || gen != e.generation || e.streamer == nil {
				e.mu.Unlock()
				return
			}
			speaker.Lock()
			pos := e.streamer.Position()
			speaker.Unlock()
			seconds := e.format.SampleRate.D(pos).Seconds()
			e.emitLocked(engine.Event{Type: engine.EventPosition, Seconds: seconds})
			e.mu.Unlock()
		}
	}
}

// emitLocked sends without blocking; stale position updates are
// droppable. Must be called with e.mu held: Close closes the channel
// under the same mutex, so the closed re-check here cannot race the
// close.
func (e *Engine) emitLocked(ev engine.Event) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
	}
}

// decode picks the decoder from the handle's format hint.
func decode(format string, src io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case "mp3":
		return mp3.Decode(src)
	case "wav":
		return wav.Decode(src)
	case "flac":
		return flac.Decode(src)
	case "ogg":
		return vorbis.Decode(src)
	default:
		return nil, beep.Format{}, errors.Newf("unsupported audio format: %q", format)
	}
}

// Verify Engine implements the engine contract at compile time.
var _ engine.Engine = (*Engine)(nil)
