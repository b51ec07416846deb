package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackbox/internal/domain/track"
)

func handle() track.Handle {
	return track.NewBytesHandle([]byte{0}, "mp3")
}

func TestAdapter_LoadsOncePerSelection(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)

	require.NoError(t, a.SetTrack(0, 0, handle()))
	assert.Equal(t, 1, m.LoadCount())

	// Same selection: no reload.
	require.NoError(t, a.SetTrack(0, 0, handle()))
	assert.Equal(t, 1, m.LoadCount())

	// New selection: reload.
	require.NoError(t, a.SetTrack(0, 1, handle()))
	assert.Equal(t, 2, m.LoadCount())
}

func TestAdapter_LoadFailureLeavesNothingLoaded(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)
	m.SetLoadError(assert.AnError)

	require.Error(t, a.SetTrack(0, 0, handle()))
	assert.Empty(t, m.Loads())

	// The failed selection is not remembered as loaded.
	require.NoError(t, a.SetPlaying(true))
	assert.Equal(t, 0, m.PlayCalls())

	// Once loading recovers, the same selection is retried.
	m.SetLoadError(nil)
	require.NoError(t, a.SetTrack(0, 0, handle()))
	assert.Len(t, m.Loads(), 1)
}

func TestAdapter_LoadBeforePlay(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)

	// Play with nothing loaded never reaches the engine.
	require.NoError(t, a.SetPlaying(true))
	assert.Equal(t, 0, m.PlayCalls())

	require.NoError(t, a.SetTrack(0, 0, handle()))
	require.NoError(t, a.SetPlaying(true))
	assert.Equal(t, 1, m.PlayCalls())
}

func TestAdapter_PlayPauseIdempotent(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)
	require.NoError(t, a.SetTrack(0, 0, handle()))

	require.NoError(t, a.SetPlaying(true))
	require.NoError(t, a.SetPlaying(true))
	assert.Equal(t, 1, m.PlayCalls())

	require.NoError(t, a.SetPlaying(false))
	require.NoError(t, a.SetPlaying(false))
	assert.Equal(t, 1, m.PauseCalls())

	// Toggling a paused track does not reload it.
	require.NoError(t, a.SetTrack(0, 0, handle()))
	assert.Equal(t, 1, m.LoadCount())
}

func TestAdapter_SeekGuardedByKnownDuration(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)

	// No track loaded: ignored.
	a.Seek(10)
	assert.Empty(t, m.SeekCalls())

	require.NoError(t, a.SetTrack(0, 0, handle()))

	// Loaded but duration unknown: still ignored.
	a.Seek(10)
	assert.Empty(t, m.SeekCalls())

	fireAndWait(t, a, func() { m.FireDurationKnown(180) })

	a.Seek(10)
	assert.Equal(t, []float64{10}, m.SeekCalls())

	// Clamped to track bounds.
	a.Seek(-5)
	a.Seek(500)
	assert.Equal(t, []float64{10, 0, 180}, m.SeekCalls())
}

func TestAdapter_SeekDisabledAfterNewLoad(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)

	require.NoError(t, a.SetTrack(0, 0, handle()))
	fireAndWait(t, a, func() { m.FireDurationKnown(60) })

	// New track resets the known duration.
	require.NoError(t, a.SetTrack(0, 1, handle()))
	a.Seek(10)
	assert.Empty(t, m.SeekCalls())
}

func TestAdapter_RunTranslatesEvents(t *testing.T) {
	m := NewMock()
	a := NewAdapter(m)

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		a.Run(ctx, rec)
		close(done)
	}()

	m.FireDurationKnown(120)
	m.FireDurationKnown(121) // last value wins
	m.FirePosition(3)
	m.FireEnded()
	require.NoError(t, m.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("adapter run did not stop after engine close")
	}

	assert.Equal(t, []float64{120, 121}, rec.durations())
	assert.Equal(t, []float64{3}, rec.positions())
	assert.Equal(t, 1, rec.endedCount())
}

// fireAndWait delivers an engine event through Run and waits for the pump
// to process it.
func fireAndWait(t *testing.T, a *Adapter, fire func()) {
	t.Helper()

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx, rec)
		close(done)
	}()

	fire()

	deadline := time.After(time.Second)
	for len(rec.durations()) == 0 && rec.endedCount() == 0 && len(rec.positions()) == 0 {
		select {
		case <-deadline:
			t.Fatal("engine event was not pumped")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done
}

type recorder struct {
	mu    sync.Mutex
	durs  []float64
	poss  []float64
	ended int
}

func (r *recorder) OnDurationKnown(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durs = append(r.durs, seconds)
}

func (r *recorder) OnPositionUpdate(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poss = append(r.poss, seconds)
}

func (r *recorder) OnEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recorder) durations() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.durs...)
}

func (r *recorder) positions() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.poss...)
}

func (r *recorder) endedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}
