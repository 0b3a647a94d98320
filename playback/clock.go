package playback

import (
	"sync"
	"time"
)

// Clock simulates the playback position of the current track from a
// wall-clock anchor plus elapsed time. It is never incremented; the only
// mutation is re-anchoring, which the engine does on track changes and
// drift corrections.
type Clock struct {
	mu           sync.Mutex
	now          func() time.Time
	trackID      string
	anchorWall   time.Time
	anchorOffset time.Duration
}

// NewClock returns an unanchored clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Anchor pins the clock: the track is at offset right now. Anchoring with
// an empty trackID is a caller fault.
func (c *Clock) Anchor(trackID string, offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackID = trackID
	c.anchorWall = c.now()
	c.anchorOffset = offset
}

// Clear forgets the anchor; Position reads zero afterwards.
func (c *Clock) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackID = ""
	c.anchorWall = time.Time{}
	c.anchorOffset = 0
}

// Position returns the simulated track position. Monotonic between
// anchors; zero when unanchored.
func (c *Clock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anchorWall.IsZero() {
		return 0
	}
	return c.anchorOffset + c.now().Sub(c.anchorWall)
}

// TrackID returns the track the clock is anchored to ("" when unanchored).
func (c *Clock) TrackID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackID
}

// Anchored reports whether the clock has been anchored since the last Clear.
func (c *Clock) Anchored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.anchorWall.IsZero()
}
