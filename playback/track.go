package playback

import (
	"sync"
	"time"

	"lightbeat/analysis"
)

// IntervalEvent is emitted when playback crosses the boundary between two
// intervals of one granularity. Current is the interval that just
// finished, Next the one that starts at the boundary (nil past the end of
// the track). Handlers run after the track's cursor has advanced.
type IntervalEvent struct {
	Granularity analysis.Granularity
	Index       int
	Current     analysis.TimeInterval
	Next        *analysis.TimeInterval
}

// IntervalHandler consumes interval boundary events.
type IntervalHandler func(IntervalEvent)

// IntervalTrack owns one granularity's interval sequence, an active-index
// cursor, and at most one pending timer for the next boundary. All cursor
// and timer mutations are serialized by the track's own mutex; a
// generation counter guarantees that a timer armed before a Seed, SyncTo
// or Cancel can never fire afterwards, even if it already left
// time.AfterFunc's runtime queue.
type IntervalTrack struct {
	granularity analysis.Granularity
	emit        IntervalHandler

	mu        sync.Mutex
	intervals []analysis.TimeInterval
	active    int
	timer     *time.Timer
	gen       uint64
}

// NewIntervalTrack creates an empty track for one granularity. emit is
// called for every boundary crossing; it must not call back into the
// track.
func NewIntervalTrack(g analysis.Granularity, emit IntervalHandler) *IntervalTrack {
	return &IntervalTrack{granularity: g, emit: emit}
}

// Seed replaces the interval sequence, resets the cursor and cancels any
// pending timer. No timer is armed until SyncTo.
func (t *IntervalTrack) Seed(intervals []analysis.TimeInterval) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.intervals = intervals
	t.active = 0
}

// SyncTo moves the cursor to the interval containing pos and arms the
// timer for that interval's end. Positions before the first interval or
// past the last clamp to the nearest boundary; a position inside the last
// interval leaves the track in its terminal state with no timer.
func (t *IntervalTrack) SyncTo(pos time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	if len(t.intervals) == 0 {
		return
	}

	t.active = analysis.IndexAt(t.intervals, pos)
	if t.active >= len(t.intervals)-1 {
		// Nothing follows the last interval, so there is no boundary
		// left to schedule.
		t.active = len(t.intervals) - 1
		return
	}

	remaining := t.intervals[t.active].End() - pos
	if remaining < 0 {
		remaining = 0
	}
	t.armLocked(remaining)
}

// Cancel clears the pending timer without emitting. Idempotent: canceling
// an empty, already-canceled or already-fired track is a no-op.
func (t *IntervalTrack) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Active returns the cursor interval and its index; ok is false while the
// track is unseeded.
func (t *IntervalTrack) Active() (iv analysis.TimeInterval, index int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.intervals) == 0 {
		return analysis.TimeInterval{}, 0, false
	}
	return t.intervals[t.active], t.active, true
}

// cancelLocked invalidates any in-flight timer callback and stops the
// timer. Callers hold t.mu.
func (t *IntervalTrack) cancelLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// armLocked schedules the boundary fire after d. Callers hold t.mu.
func (t *IntervalTrack) armLocked(d time.Duration) {
	gen := t.gen
	t.timer = time.AfterFunc(d, func() { t.fire(gen) })
}

// fire handles a timer callback: emit the boundary event, advance the
// cursor, and re-arm using the new interval's own duration. Small drift
// accumulated by chaining durations is corrected by the engine's periodic
// re-anchoring. A fire whose generation is stale belongs to a sequence
// that has since been reseeded or canceled and is dropped.
func (t *IntervalTrack) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil

	ev := IntervalEvent{
		Granularity: t.granularity,
		Index:       t.active,
		Current:     t.intervals[t.active],
	}
	if t.active+1 < len(t.intervals) {
		next := t.intervals[t.active+1]
		ev.Next = &next
		t.active++
		if t.active < len(t.intervals)-1 {
			t.armLocked(next.Duration)
		}
	}
	t.mu.Unlock()

	// Emit after the cursor mutation is committed and outside the lock,
	// so handlers never observe a half-updated track and may take their
	// own locks freely.
	if t.emit != nil {
		t.emit(ev)
	}
}
