// Package sequencer implements the playback state machine: it tracks the
// current selection, derives what plays next, and applies navigation
// commands against the library and the play queue.
package sequencer

// Status represents the playback status.
type Status int

const (
	StatusStopped Status = iota // Nothing selected, or engine not instructed to play
	StatusPlaying               // Track is playing
	StatusPaused                // Track is paused
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Direction represents a manual navigation direction.
type Direction int

const (
	Next Direction = iota
	Previous
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "unknown"
	}
}

// Selection identifies the currently selected track, independent of
// whether it is actively playing. Both fields are set together; -1 in
// both means nothing is selected.
type Selection struct {
	Playlist int
	Track    int
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{Playlist: -1, Track: -1}
}

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool {
	return s.Playlist < 0
}
