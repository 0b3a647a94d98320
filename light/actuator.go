package light

import (
	"sync"

	"lightbeat/debug"
)

// RGB is an 8-bit-per-channel color triple.
type RGB [3]uint8

// Actuator is the capability surface the transition engine drives. Every
// call is a best-effort network write; connection lifecycle (discovery,
// pairing, reconnects) lives behind the implementation.
type Actuator interface {
	ID() string
	SetPower(on bool) error
	SetBrightness(percent int) error
	SetColor(c RGB) error
}

// LogActuator is a no-op Actuator that records calls to the debug log.
// Useful as a stand-in while no real bulb transport is wired up.
type LogActuator struct {
	Name string
}

func (l *LogActuator) ID() string { return l.Name }

func (l *LogActuator) SetPower(on bool) error {
	debug.Log("light", "%s power=%v", l.Name, on)
	return nil
}

func (l *LogActuator) SetBrightness(percent int) error {
	debug.Log("light", "%s brightness=%d", l.Name, percent)
	return nil
}

func (l *LogActuator) SetColor(c RGB) error {
	debug.Log("light", "%s color=%d,%d,%d", l.Name, c[0], c[1], c[2])
	return nil
}

// Recorder is an Actuator that remembers every call, for tests and the
// lighttest binary.
type Recorder struct {
	Name string

	mu          sync.Mutex
	Power       []bool
	Brightness  []int
	Colors      []RGB
	FailWrites  bool // when set, every write returns an error
	writeErrors int
}

func (r *Recorder) ID() string { return r.Name }

func (r *Recorder) SetPower(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites {
		r.writeErrors++
		return errWriteFailed
	}
	r.Power = append(r.Power, on)
	return nil
}

func (r *Recorder) SetBrightness(percent int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites {
		r.writeErrors++
		return errWriteFailed
	}
	r.Brightness = append(r.Brightness, percent)
	return nil
}

func (r *Recorder) SetColor(c RGB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites {
		r.writeErrors++
		return errWriteFailed
	}
	r.Colors = append(r.Colors, c)
	return nil
}

// BrightnessCalls returns a copy of the recorded brightness writes.
func (r *Recorder) BrightnessCalls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.Brightness))
	copy(out, r.Brightness)
	return out
}

// ColorCalls returns a copy of the recorded color writes.
func (r *Recorder) ColorCalls() []RGB {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RGB, len(r.Colors))
	copy(out, r.Colors)
	return out
}

// WriteErrors returns how many writes failed while FailWrites was set.
func (r *Recorder) WriteErrors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeErrors
}
