package engine

import (
	"sync"

	"trackbox/internal/domain/track"
)

// Mock is a test double for Engine. It records issued commands and lets
// tests fire engine events.
type Mock struct {
	mu         sync.Mutex
	events     chan Event
	loads      []track.Handle
	playCalls  int
	pauseCalls int
	seekCalls  []float64
	loadErr    error
	closed     bool
}

// NewMock creates a mock engine.
func NewMock() *Mock {
	return &Mock{events: make(chan Event, 16)}
}

func (m *Mock) Load(h track.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loads = append(m.loads, h)
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	return nil
}

func (m *Mock) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, seconds)
	return nil
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

func (m *Mock) Loads() []track.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]track.Handle, len(m.loads))
	copy(result, m.loads)
	return result
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]float64, len(m.seekCalls))
	copy(result, m.seekCalls)
	return result
}

// FireDurationKnown emits a duration event.
func (m *Mock) FireDurationKnown(seconds float64) {
	m.events <- Event{Type: EventDurationKnown, Seconds: seconds}
}

// FirePosition emits a position event.
func (m *Mock) FirePosition(seconds float64) {
	m.events <- Event{Type: EventPosition, Seconds: seconds}
}

// FireEnded emits an end-of-track event.
func (m *Mock) FireEnded() {
	m.events <- Event{Type: EventEnded}
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
