package source

import (
	"context"
	"fmt"
	"math"
	"time"

	"lightbeat/analysis"
	"lightbeat/playback"
)

// Demo is a deterministic in-process playback source: a two-track playlist
// of synthetic songs that starts "playing" when the demo is created and
// loops forever. Lets the whole pipeline run without a music service.
type Demo struct {
	start  time.Time
	tracks []playback.Track
	total  time.Duration
}

// NewDemo builds the demo playlist.
func NewDemo() *Demo {
	d := &Demo{
		start: time.Now(),
		tracks: []playback.Track{
			{ID: "demo-1", Name: "Sine Language", Artist: "The Oscillators", Duration: 150 * time.Second},
			{ID: "demo-2", Name: "Phase Shift", Artist: "The Oscillators", Duration: 180 * time.Second},
		},
	}
	for _, t := range d.tracks {
		d.total += t.Duration
	}
	return d
}

// CurrentlyPlaying maps elapsed wall time onto the looping playlist.
func (d *Demo) CurrentlyPlaying(ctx context.Context) (playback.PlaybackState, error) {
	elapsed := time.Since(d.start) % d.total
	for _, t := range d.tracks {
		if elapsed < t.Duration {
			return playback.PlaybackState{TrackID: t.ID, IsPlaying: true, Progress: elapsed}, nil
		}
		elapsed -= t.Duration
	}
	return playback.PlaybackState{}, nil
}

// Track implements playback.Source.
func (d *Demo) Track(ctx context.Context, id string) (playback.Track, error) {
	for _, t := range d.tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return playback.Track{}, fmt.Errorf("source: unknown demo track %q", id)
}

// Analysis synthesizes a plausible structural analysis: 4/4 bars at a
// per-track tempo, segments whose pitch vectors sweep the pitch classes,
// loudness breathing over the sections. Regenerated per call so the
// engine's in-place normalization never aliases shared state.
func (d *Demo) Analysis(ctx context.Context, id string) (*analysis.Analysis, error) {
	track, err := d.Track(ctx, id)
	if err != nil {
		return nil, err
	}

	bpm := 104.0
	if id == "demo-2" {
		bpm = 126.0
	}

	beat := time.Duration(float64(time.Minute) / bpm)
	a := &analysis.Analysis{}

	for start := time.Duration(0); start < track.Duration; start += beat {
		a.Beats = append(a.Beats, analysis.TimeInterval{Start: start, Duration: beat, Confidence: 0.9})
	}
	for start := time.Duration(0); start < track.Duration; start += beat / 2 {
		a.Tatums = append(a.Tatums, analysis.TimeInterval{Start: start, Duration: beat / 2, Confidence: 0.7})
	}
	for start := time.Duration(0); start < track.Duration; start += 4 * beat {
		a.Bars = append(a.Bars, analysis.TimeInterval{Start: start, Duration: 4 * beat, Confidence: 0.85})
	}

	sectionLen := track.Duration / 6
	for i := 0; i < 6; i++ {
		a.Sections = append(a.Sections, analysis.Section{
			TimeInterval: analysis.TimeInterval{
				Start:      time.Duration(i) * sectionLen,
				Duration:   sectionLen,
				Confidence: 0.8,
			},
			Loudness:      -22 + 10*math.Sin(float64(i)),
			Tempo:         bpm,
			Key:           (i * 5) % 12,
			Mode:          i % 2,
			TimeSignature: 4,
		})
	}

	// Segments are two beats long; pitch energy rotates through the
	// pitch classes so the lights sweep the gradient.
	segLen := 2 * beat
	idx := 0
	for start := time.Duration(0); start < track.Duration; start += segLen {
		seg := analysis.Segment{
			TimeInterval: analysis.TimeInterval{Start: start, Duration: segLen, Confidence: 0.75},
		}
		phase := float64(idx) * 0.35
		for p := 0; p < 12; p++ {
			seg.Pitches[p] = 0.5 + 0.5*math.Sin(phase+float64(p)*math.Pi/6)
			seg.Timbre[p] = 20 * math.Cos(phase+float64(p))
		}
		seg.LoudnessStart = -28 + 14*math.Sin(phase/2)
		seg.LoudnessMax = seg.LoudnessStart + 6
		seg.LoudnessMaxTime = segLen / 3
		a.Segments = append(a.Segments, seg)
		idx++
	}

	return a, nil
}
