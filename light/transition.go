package light

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"lightbeat/debug"
)

var errWriteFailed = errors.New("light: write failed")

// ErrBrightnessRange is returned when a brightness endpoint falls outside
// 0..100. Nothing is written to the actuator in that case.
var ErrBrightnessRange = errors.New("light: brightness out of range 0..100")

// Interpolator produces the color at position t (0..1) on the path from
// one color to another. Implementations live in the palette package.
type Interpolator func(from, to RGB, t float64) RGB

type kind int

const (
	kindBrightness kind = iota
	kindColor
)

func (k kind) String() string {
	if k == kindColor {
		return "color"
	}
	return "brightness"
}

type lockKey struct {
	id string
	k  kind
}

// Transitioner ramps one actuator attribute at a time from a start value
// to an end value. At most one ramp of a given kind may run per actuator;
// a ramp requested while one of the same kind is in flight is dropped,
// never queued, so fast-firing musical segments cannot build a backlog.
type Transitioner struct {
	delay  time.Duration
	interp Interpolator

	mu    sync.Mutex
	locks map[lockKey]*sync.Mutex
}

// NewTransitioner creates a transition engine that sleeps delay between
// consecutive actuator writes.
func NewTransitioner(delay time.Duration, interp Interpolator) *Transitioner {
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	return &Transitioner{
		delay:  delay,
		interp: interp,
		locks:  make(map[lockKey]*sync.Mutex),
	}
}

func (t *Transitioner) lockFor(id string, k kind) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := lockKey{id, k}
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// Brightness ramps an actuator's brightness from one percentage to
// another over dur. Blocks until the ramp completes; run it in its own
// goroutine when the caller must not wait. A concurrent brightness ramp
// on the same actuator causes this one to be dropped with a warning.
func (t *Transitioner) Brightness(a Actuator, from, to int, dur time.Duration) error {
	if from < 0 || from > 100 || to < 0 || to > 100 {
		return fmt.Errorf("%w: from=%d to=%d", ErrBrightnessRange, from, to)
	}

	l := t.lockFor(a.ID(), kindBrightness)
	if !l.TryLock() {
		debug.Log("transition", "drop brightness ramp on %s: one already in flight", a.ID())
		return nil
	}
	defer l.Unlock()

	steps := t.stepCount(dur)
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		v := int(math.Round(float64(from) + float64(to-from)*frac))
		if err := a.SetBrightness(v); err != nil {
			// One missed frame, not a failure; the driver owns reconnects.
			debug.Log("transition", "%s brightness step %d/%d: %v", a.ID(), i, steps, err)
		}
		time.Sleep(t.delay)
	}
	return nil
}

// Color ramps an actuator's color from one value to another over dur,
// sampling the configured color-space interpolator. Same locking and
// drop discipline as Brightness; a brightness ramp and a color ramp may
// run concurrently on the same actuator.
func (t *Transitioner) Color(a Actuator, from, to RGB, dur time.Duration) error {
	l := t.lockFor(a.ID(), kindColor)
	if !l.TryLock() {
		debug.Log("transition", "drop color ramp on %s: one already in flight", a.ID())
		return nil
	}
	defer l.Unlock()

	steps := t.stepCount(dur)
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		if err := a.SetColor(t.interp(from, to, frac)); err != nil {
			debug.Log("transition", "%s color step %d/%d: %v", a.ID(), i, steps, err)
		}
		time.Sleep(t.delay)
	}
	return nil
}

// stepCount returns how many evenly spaced samples fit in dur. The last
// sample always lands exactly on the target value.
func (t *Transitioner) stepCount(dur time.Duration) int {
	steps := int(dur / t.delay)
	if steps < 1 {
		steps = 1
	}
	return steps
}
