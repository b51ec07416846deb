// Package queue provides the play queue that preempts normal sequencing.
package queue

import (
	"sync"

	"github.com/cockroachdb/errors"

	"trackbox/internal/domain/track"
)

// ErrOutOfRange is returned when a queue position or a library reference
// is outside current bounds.
var ErrOutOfRange = errors.New("index out of range")

// Resolver validates (playlist, track) references. Implemented by
// library.Library.
type Resolver interface {
	Resolve(playlistIndex, trackIndex int) (track.Track, error)
}

// Entry references a track in the library. It is a reference, not a copy.
type Entry struct {
	Playlist int
	Track    int
}

// Queue is an ordered, user-editable list of entries with FIFO semantics
// for automatic consumption. PopFront and DequeueAt are atomic with
// respect to each other: a manual dequeue and an automatic pop can never
// both consume the same head entry.
type Queue struct {
	mu       sync.Mutex
	resolver Resolver
	entries  []Entry
}

// New creates an empty queue validating entries against the resolver.
func New(resolver Resolver) *Queue {
	return &Queue{
		resolver: resolver,
		entries:  make([]Entry, 0),
	}
}

// Enqueue validates the reference and appends it, returning its position.
// Existing entries keep their order.
func (q *Queue) Enqueue(playlistIndex, trackIndex int) (int, error) {
	if _, err := q.resolver.Resolve(playlistIndex, trackIndex); err != nil {
		return 0, errors.Wrap(err, "enqueue")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, Entry{Playlist: playlistIndex, Track: trackIndex})
	return len(q.entries) - 1, nil
}

// DequeueAt removes the entry at the given position (0 = FIFO head).
// Entries after it shift down by one.
func (q *Queue) DequeueAt(position int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if position < 0 || position >= len(q.entries) {
		return errors.Wrapf(ErrOutOfRange, "queue position %d (queue has %d entries)", position, len(q.entries))
	}
	q.entries = append(q.entries[:position], q.entries[position+1:]...)
	return nil
}

// PopFront atomically removes and returns the head entry. The second
// return value is false when the queue is empty, which is a normal
// condition, not an error.
func (q *Queue) PopFront() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Entry{}, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// Entries returns a copy of the queued entries in order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]Entry, len(q.entries))
	copy(result, q.entries)
	return result
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
