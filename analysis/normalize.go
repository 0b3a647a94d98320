package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
)

// ErrEmptySequence is returned when a granularity has no intervals at all.
// The engine treats it as fatal for the current track only.
var ErrEmptySequence = errors.New("analysis: empty interval sequence")

// NormalizeIntervals returns a copy of s adjusted so the sequence starts at
// zero, ends exactly at total, and is contiguous with no gaps or overlaps.
// Raw analysis data routinely violates all three at the edges.
func NormalizeIntervals(s []TimeInterval, total time.Duration) ([]TimeInterval, error) {
	if len(s) == 0 {
		return nil, ErrEmptySequence
	}
	if total <= 0 {
		return nil, fmt.Errorf("analysis: track duration %v is not positive", total)
	}

	out := make([]TimeInterval, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	if out[0].Start >= total {
		return nil, fmt.Errorf("analysis: first interval starts at %v, past track end %v", out[0].Start, total)
	}

	// Pin the first interval to zero, absorbing any leading gap.
	out[0].Start = 0

	// Each interval runs until the next one starts.
	for i := 0; i < len(out)-1; i++ {
		out[i].Duration = out[i+1].Start - out[i].Start
	}

	// The last interval runs to the end of the track.
	last := len(out) - 1
	out[last].Duration = total - out[last].Start

	return out, nil
}

// Normalize rewrites every granularity of a in place so all five sequences
// satisfy the contiguity invariant for a track of the given total duration.
// A granularity with no intervals fails the whole analysis.
func Normalize(a *Analysis, total time.Duration) error {
	var err error
	if a.Bars, err = NormalizeIntervals(a.Bars, total); err != nil {
		return fmt.Errorf("bars: %w", err)
	}
	if a.Beats, err = NormalizeIntervals(a.Beats, total); err != nil {
		return fmt.Errorf("beats: %w", err)
	}
	if a.Tatums, err = NormalizeIntervals(a.Tatums, total); err != nil {
		return fmt.Errorf("tatums: %w", err)
	}

	if len(a.Sections) == 0 {
		return fmt.Errorf("sections: %w", ErrEmptySequence)
	}
	secs, err := NormalizeIntervals(intervalsOfSections(a.Sections), total)
	if err != nil {
		return fmt.Errorf("sections: %w", err)
	}
	sort.Slice(a.Sections, func(i, j int) bool { return a.Sections[i].Start < a.Sections[j].Start })
	for i := range a.Sections {
		a.Sections[i].TimeInterval = secs[i]
	}

	if len(a.Segments) == 0 {
		return fmt.Errorf("segments: %w", ErrEmptySequence)
	}
	segs, err := NormalizeIntervals(intervalsOfSegments(a.Segments), total)
	if err != nil {
		return fmt.Errorf("segments: %w", err)
	}
	sort.Slice(a.Segments, func(i, j int) bool { return a.Segments[i].Start < a.Segments[j].Start })
	for i := range a.Segments {
		a.Segments[i].TimeInterval = segs[i]
	}

	return nil
}

func intervalsOfSections(s []Section) []TimeInterval {
	return lo.Map(s, func(v Section, _ int) TimeInterval { return v.TimeInterval })
}

func intervalsOfSegments(s []Segment) []TimeInterval {
	return lo.Map(s, func(v Segment, _ int) TimeInterval { return v.TimeInterval })
}
