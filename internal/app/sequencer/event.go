package sequencer

import "trackbox/internal/domain/track"

// EventType represents a sequencer event type.
type EventType int

const (
	EventTrackChanged   EventType = iota // Selection moved to a different track
	EventStatusChanged                   // Playback status changed (play/pause)
	EventQueueChanged                    // Queue contents changed
	EventLibraryChanged                  // A playlist was added to the library
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventStatusChanged:
		return "status_changed"
	case EventQueueChanged:
		return "queue_changed"
	case EventLibraryChanged:
		return "library_changed"
	default:
		return "unknown"
	}
}

// Event represents a sequencer event.
type Event struct {
	Type      EventType
	Selection Selection
	Track     *track.Track // selected track (nil for queue events with no selection)
	Status    Status
}
