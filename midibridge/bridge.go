// Package midibridge mirrors the musical grid onto a MIDI output, so
// external gear (drum machines, visuals) can follow the same beats and
// bars the lights do.
package midibridge

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"lightbeat/analysis"
	"lightbeat/debug"
	"lightbeat/playback"
)

// gateTime is how long each pulse note is held before NoteOff.
const gateTime = 30 * time.Millisecond

// Bridge sends a short note on every beat and bar boundary.
type Bridge struct {
	portName string
	channel  uint8
	beatNote uint8
	barNote  uint8

	mu     sync.Mutex
	sender func(gomidi.Message) error
}

// New creates a bridge targeting the named output port. The port is
// opened lazily on the first pulse, so the bridge tolerates the port
// appearing after startup.
func New(portName string, channel, beatNote, barNote uint8) *Bridge {
	if channel > 15 {
		channel = 0
	}
	return &Bridge{
		portName: portName,
		channel:  channel,
		beatNote: beatNote,
		barNote:  barNote,
	}
}

// Attach registers the bridge's handlers on an engine. Call before the
// engine runs.
func (b *Bridge) Attach(e *playback.Engine) {
	e.OnInterval(analysis.Beats, func(playback.IntervalEvent) { b.pulse(b.beatNote) })
	e.OnInterval(analysis.Bars, func(playback.IntervalEvent) { b.pulse(b.barNote) })
}

// Ports lists the available MIDI output port names.
func Ports() []string {
	var names []string
	for _, port := range gomidi.GetOutPorts() {
		names = append(names, port.String())
	}
	return names
}

// getSender returns the cached sender, opening the port on first use.
func (b *Bridge) getSender() func(gomidi.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sender != nil {
		return b.sender
	}
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == b.portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				debug.Log("midi", "open %s: %v", b.portName, err)
				return nil
			}
			b.sender = sender
			return sender
		}
	}
	return nil
}

// pulse sends note on, then note off after the gate time.
func (b *Bridge) pulse(note uint8) {
	sender := b.getSender()
	if sender == nil {
		debug.LogEvery(16, "midi", "port %q not available", b.portName)
		return
	}
	if err := sender(gomidi.NoteOn(b.channel, note, 100)); err != nil {
		debug.Log("midi", "note on %d: %v", note, err)
		return
	}
	go func() {
		time.Sleep(gateTime)
		sender(gomidi.NoteOff(b.channel, note))
	}()
}
