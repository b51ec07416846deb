// Package engine bridges the sequencer to an external playback engine.
//
// The engine decodes and outputs audio on its own schedule; it accepts
// load/play/pause/seek commands and reports duration, position and
// end-of-track asynchronously through an event channel.
package engine

import "trackbox/internal/domain/track"

// EventType represents an engine event type.
type EventType int

const (
	EventDurationKnown EventType = iota // Duration of the loaded track is known
	EventPosition                       // Playback position update
	EventEnded                          // Track played to its natural end
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventDurationKnown:
		return "duration_known"
	case EventPosition:
		return "position"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event represents an engine event.
type Event struct {
	Type    EventType
	Seconds float64 // duration or position, unused for EventEnded
}

// Engine is the command surface of the external playback engine.
type Engine interface {
	// Load prepares the given handle for playback, replacing any
	// previously loaded track. Playback does not start until Play.
	Load(h track.Handle) error

	// Play starts or resumes playback of the loaded track.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Seek moves the playback position to the given offset in seconds.
	Seek(seconds float64) error

	// Events returns the engine's event channel. Closed by Close.
	Events() <-chan Event

	// Close stops playback and releases engine resources.
	Close() error
}

// Callbacks receives translated engine events. Implemented by the
// sequencer.
type Callbacks interface {
	OnDurationKnown(seconds float64)
	OnPositionUpdate(seconds float64)
	OnEnded()
}
