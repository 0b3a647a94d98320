package analysis

import "time"

// Granularity identifies one level of musical structure. Every level is a
// sequence of contiguous TimeIntervals covering the whole track.
type Granularity int

const (
	Bars Granularity = iota
	Beats
	Sections
	Segments
	Tatums
	NumGranularities
)

func (g Granularity) String() string {
	switch g {
	case Bars:
		return "bars"
	case Beats:
		return "beats"
	case Sections:
		return "sections"
	case Segments:
		return "segments"
	case Tatums:
		return "tatums"
	}
	return "unknown"
}

// TimeInterval is one bar/beat/section/segment/tatum. Immutable once
// normalized; only Start and Duration matter to the scheduler.
type TimeInterval struct {
	Start      time.Duration `json:"start"`
	Duration   time.Duration `json:"duration"`
	Confidence float64       `json:"confidence"`
}

// End returns the exclusive end position of the interval.
func (ti TimeInterval) End() time.Duration {
	return ti.Start + ti.Duration
}

// Section is a TimeInterval plus section-level audio attributes. The
// attributes are opaque payload to the scheduler.
type Section struct {
	TimeInterval
	Loudness      float64 `json:"loudness"`
	Tempo         float64 `json:"tempo"`
	Key           int     `json:"key"`
	Mode          int     `json:"mode"`
	TimeSignature int     `json:"timeSignature"`
}

// Segment is a TimeInterval plus per-segment pitch/timbre/loudness data.
type Segment struct {
	TimeInterval
	LoudnessStart   float64       `json:"loudnessStart"`
	LoudnessMax     float64       `json:"loudnessMax"`
	LoudnessMaxTime time.Duration `json:"loudnessMaxTime"`
	Pitches         [12]float64   `json:"pitches"`
	Timbre          [12]float64   `json:"timbre"`
}

// Analysis holds all five interval sequences for one track.
type Analysis struct {
	Bars     []TimeInterval
	Beats    []TimeInterval
	Tatums   []TimeInterval
	Sections []Section
	Segments []Segment
}

// Intervals returns the bare interval sequence for a granularity.
// Sections and segments are flattened to their embedded intervals.
func (a *Analysis) Intervals(g Granularity) []TimeInterval {
	switch g {
	case Bars:
		return a.Bars
	case Beats:
		return a.Beats
	case Tatums:
		return a.Tatums
	case Sections:
		return intervalsOfSections(a.Sections)
	case Segments:
		return intervalsOfSegments(a.Segments)
	}
	return nil
}

// IndexAt returns the index of the interval containing pos, clamped to the
// nearest valid index when pos falls before the first or past the last
// interval. The sequence must be non-empty and sorted by start.
func IndexAt(s []TimeInterval, pos time.Duration) int {
	if pos <= 0 {
		return 0
	}
	// Binary search for the last interval with Start <= pos.
	lo, hi := 0, len(s)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s[mid].Start <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
