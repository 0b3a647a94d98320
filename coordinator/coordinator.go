// Package coordinator fans segment boundary events out to the light rig.
// Each actuator owns a band of the 12 pitch classes; segment pitch energy
// picks its color, segment loudness picks its brightness, and both ramp
// over the segment now playing.
package coordinator

import (
	"math"
	"sync"
	"time"

	"github.com/samber/lo"

	"lightbeat/analysis"
	"lightbeat/debug"
	"lightbeat/light"
	"lightbeat/palette"
	"lightbeat/playback"
)

// rampHeadroom leaves 5% of the segment before the next boundary fires,
// so a ramp always completes before the next one is requested.
const rampHeadroom = 0.95

// Coordinator maps playback events onto per-actuator transitions.
type Coordinator struct {
	actuators []light.Actuator
	trans     *light.Transitioner
	gradient  palette.Gradient

	mu       sync.Mutex
	segments []analysis.Segment
}

// New creates a coordinator driving the given actuators through trans.
func New(actuators []light.Actuator, trans *light.Transitioner, gradient palette.Gradient) *Coordinator {
	return &Coordinator{actuators: actuators, trans: trans, gradient: gradient}
}

// Attach registers the coordinator's handlers on an engine. Call before
// the engine runs.
func (c *Coordinator) Attach(e *playback.Engine) {
	e.OnTrackChanged(c.trackChanged)
	e.OnTrackStopped(c.trackStopped)
	e.OnError(func(error) { c.trackStopped() })
	e.OnInterval(analysis.Segments, c.segmentChanged)
}

func (c *Coordinator) trackChanged(_ playback.Track, a *analysis.Analysis) {
	c.mu.Lock()
	c.segments = a.Segments
	c.mu.Unlock()
	for _, act := range c.actuators {
		if err := act.SetPower(true); err != nil {
			debug.Log("coord", "%s power on: %v", act.ID(), err)
		}
	}
}

func (c *Coordinator) trackStopped() {
	c.mu.Lock()
	c.segments = nil
	c.mu.Unlock()
	for _, act := range c.actuators {
		if err := act.SetPower(false); err != nil {
			debug.Log("coord", "%s power off: %v", act.ID(), err)
		}
	}
}

// segmentChanged issues one color and one brightness ramp per actuator,
// from the finished segment's values to the starting segment's values.
// The ramps run concurrently; the per-(actuator,kind) locks in the
// transitioner drop any ramp that would overlap a running one.
func (c *Coordinator) segmentChanged(ev playback.IntervalEvent) {
	if ev.Next == nil {
		return
	}

	c.mu.Lock()
	segments := c.segments
	c.mu.Unlock()
	if ev.Index+1 >= len(segments) {
		return
	}
	cur, next := segments[ev.Index], segments[ev.Index+1]

	dur := time.Duration(rampHeadroom * float64(next.Duration))
	n := len(c.actuators)
	for i, act := range c.actuators {
		fromColor := c.gradient.Sample(bandEnergy(cur.Pitches, i, n))
		toColor := c.gradient.Sample(bandEnergy(next.Pitches, i, n))
		fromB := brightnessPercent(cur.LoudnessStart)
		toB := brightnessPercent(next.LoudnessStart)

		act := act
		go func() {
			if err := c.trans.Color(act, fromColor, toColor, dur); err != nil {
				debug.Log("coord", "%s color ramp: %v", act.ID(), err)
			}
		}()
		go func() {
			if err := c.trans.Brightness(act, fromB, toB, dur); err != nil {
				debug.Log("coord", "%s brightness ramp: %v", act.ID(), err)
			}
		}()
	}
}

// bandEnergy averages actuator i's slice of the pitch-class vector. Bands
// are [i*12/n, (i+1)*12/n); integer floor leaves the remainder with the
// last actuator. With more actuators than pitch classes a band can come
// out empty, in which case it collapses to a single clamped pitch class.
func bandEnergy(pitches [12]float64, i, n int) float64 {
	lo12 := i * 12 / n
	hi12 := (i + 1) * 12 / n
	if lo12 >= hi12 {
		p := lo12
		if p > 11 {
			p = 11
		}
		return pitches[p]
	}
	band := pitches[lo12:hi12]
	return lo.Sum(band) / float64(len(band))
}

// brightnessPercent maps segment loudness (dBFS, typically -60..0) onto a
// 0..100 brightness.
func brightnessPercent(loudness float64) int {
	v := math.Abs(loudness+50) / 100
	if v > 1 {
		v = 1
	}
	return int(math.Round(v * 100))
}
