package light

import "sync"

// Mirror decorates an Actuator, remembering the last written state so the
// UI can render the rig without talking to the hardware. Writes pass
// through to the wrapped actuator unchanged.
type Mirror struct {
	inner    Actuator
	onChange func()

	mu         sync.Mutex
	color      RGB
	brightness int
	on         bool
}

// NewMirror wraps inner. onChange, if non-nil, is called after every
// successful write; it must be cheap and non-blocking.
func NewMirror(inner Actuator, onChange func()) *Mirror {
	return &Mirror{inner: inner, onChange: onChange}
}

func (m *Mirror) ID() string { return m.inner.ID() }

func (m *Mirror) SetPower(on bool) error {
	if err := m.inner.SetPower(on); err != nil {
		return err
	}
	m.mu.Lock()
	m.on = on
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Mirror) SetBrightness(percent int) error {
	if err := m.inner.SetBrightness(percent); err != nil {
		return err
	}
	m.mu.Lock()
	m.brightness = percent
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Mirror) SetColor(c RGB) error {
	if err := m.inner.SetColor(c); err != nil {
		return err
	}
	m.mu.Lock()
	m.color = c
	m.mu.Unlock()
	m.notify()
	return nil
}

// State returns the last written color, brightness and power state.
func (m *Mirror) State() (c RGB, brightness int, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color, m.brightness, m.on
}

func (m *Mirror) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}
