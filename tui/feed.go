package tui

import (
	"sync"
	"time"

	"lightbeat/analysis"
	"lightbeat/playback"
)

// Feed collects engine events into a snapshot the view can render, and
// coalesces change notifications into a drop-if-full channel the way the
// sequencer manager notifies its TUI.
type Feed struct {
	engine  *playback.Engine
	updates chan struct{}

	mu       sync.Mutex
	track    *playback.Track
	lastErr  error
	beatAt   time.Time
	beats    int
	bars     int
	sections int
	segments int
}

// Snapshot is one consistent view of the feed's state.
type Snapshot struct {
	Track    *playback.Track
	Position time.Duration
	LastErr  error
	BeatAt   time.Time
	Beats    int
	Bars     int
	Sections int
	Segments int
}

// NewFeed subscribes a feed to the engine. Call before the engine runs.
func NewFeed(e *playback.Engine) *Feed {
	f := &Feed{engine: e, updates: make(chan struct{}, 1)}

	e.OnTrackChanged(func(t playback.Track, _ *analysis.Analysis) {
		f.mu.Lock()
		f.track = &t
		f.lastErr = nil
		f.beats, f.bars, f.sections, f.segments = 0, 0, 0, 0
		f.mu.Unlock()
		f.Notify()
	})
	e.OnTrackStopped(func() {
		f.mu.Lock()
		f.track = nil
		f.mu.Unlock()
		f.Notify()
	})
	e.OnError(func(err error) {
		f.mu.Lock()
		f.track = nil
		f.lastErr = err
		f.mu.Unlock()
		f.Notify()
	})
	e.OnInterval(analysis.Beats, func(playback.IntervalEvent) {
		f.mu.Lock()
		f.beats++
		f.beatAt = time.Now()
		f.mu.Unlock()
		f.Notify()
	})
	e.OnInterval(analysis.Bars, func(playback.IntervalEvent) { f.count(&f.bars) })
	e.OnInterval(analysis.Sections, func(playback.IntervalEvent) { f.count(&f.sections) })
	e.OnInterval(analysis.Segments, func(playback.IntervalEvent) { f.count(&f.segments) })

	return f
}

func (f *Feed) count(field *int) {
	f.mu.Lock()
	*field++
	f.mu.Unlock()
	f.Notify()
}

// Notify signals the UI that something changed; dropped when an update is
// already pending.
func (f *Feed) Notify() {
	select {
	case f.updates <- struct{}{}:
	default:
	}
}

// Updates is the coalesced change channel.
func (f *Feed) Updates() <-chan struct{} {
	return f.updates
}

// Snapshot returns the current state plus the live clock position.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Track:    f.track,
		Position: f.engine.Position(),
		LastErr:  f.lastErr,
		BeatAt:   f.beatAt,
		Beats:    f.beats,
		Bars:     f.bars,
		Sections: f.sections,
		Segments: f.segments,
	}
}
