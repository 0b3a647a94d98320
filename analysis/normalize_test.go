package analysis

import (
	"errors"
	"testing"
	"time"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestNormalizeIntervals_ForcesEdges(t *testing.T) {
	// Raw data: leading gap, internal gap, overlap, ragged end.
	raw := []TimeInterval{
		{Start: ms(120), Duration: ms(800)},
		{Start: ms(1000), Duration: ms(1100)}, // overlaps next
		{Start: ms(2000), Duration: ms(900)},  // gap before next
		{Start: ms(3100), Duration: ms(600)},  // ends short of track
	}
	total := ms(4000)

	got, err := NormalizeIntervals(raw, total)
	if err != nil {
		t.Fatal(err)
	}

	if got[0].Start != 0 {
		t.Errorf("first interval starts at %v, want 0", got[0].Start)
	}
	last := got[len(got)-1]
	if last.End() != total {
		t.Errorf("last interval ends at %v, want %v", last.End(), total)
	}
	for i := 0; i < len(got)-1; i++ {
		if got[i].End() != got[i+1].Start {
			t.Errorf("interval %d ends at %v but %d starts at %v", i, got[i].End(), i+1, got[i+1].Start)
		}
	}
}

func TestNormalizeIntervals_DoesNotMutateInput(t *testing.T) {
	raw := []TimeInterval{{Start: ms(50), Duration: ms(100)}}
	if _, err := NormalizeIntervals(raw, ms(1000)); err != nil {
		t.Fatal(err)
	}
	if raw[0].Start != ms(50) || raw[0].Duration != ms(100) {
		t.Errorf("input mutated: %+v", raw[0])
	}
}

func TestNormalizeIntervals_Empty(t *testing.T) {
	_, err := NormalizeIntervals(nil, ms(1000))
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("got %v, want ErrEmptySequence", err)
	}
}

func TestNormalizeIntervals_StartPastEnd(t *testing.T) {
	raw := []TimeInterval{{Start: ms(5000), Duration: ms(100)}}
	if _, err := NormalizeIntervals(raw, ms(1000)); err == nil {
		t.Error("expected error for interval starting past track end")
	}
}

func TestNormalize_AllGranularities(t *testing.T) {
	a := &Analysis{
		Bars:   []TimeInterval{{Start: ms(10), Duration: ms(2000)}},
		Beats:  []TimeInterval{{Start: 0, Duration: ms(900)}, {Start: ms(1000), Duration: ms(900)}},
		Tatums: []TimeInterval{{Start: 0, Duration: ms(500)}, {Start: ms(500), Duration: ms(400)}},
		Sections: []Section{
			{TimeInterval: TimeInterval{Start: ms(30), Duration: ms(1500)}, Loudness: -12},
		},
		Segments: []Segment{
			{TimeInterval: TimeInterval{Start: 0, Duration: ms(800)}, LoudnessStart: -20},
			{TimeInterval: TimeInterval{Start: ms(900), Duration: ms(800)}, LoudnessStart: -18},
		},
	}
	total := ms(2000)
	if err := Normalize(a, total); err != nil {
		t.Fatal(err)
	}

	for g := Granularity(0); g < NumGranularities; g++ {
		ivs := a.Intervals(g)
		if len(ivs) == 0 {
			t.Fatalf("%v: no intervals after normalize", g)
		}
		if ivs[0].Start != 0 {
			t.Errorf("%v: first start %v, want 0", g, ivs[0].Start)
		}
		if ivs[len(ivs)-1].End() != total {
			t.Errorf("%v: last end %v, want %v", g, ivs[len(ivs)-1].End(), total)
		}
	}

	// Attributes survive normalization.
	if a.Sections[0].Loudness != -12 {
		t.Errorf("section loudness lost: %v", a.Sections[0].Loudness)
	}
	if a.Segments[1].LoudnessStart != -18 {
		t.Errorf("segment loudness lost: %v", a.Segments[1].LoudnessStart)
	}
}

func TestNormalize_MissingGranularityIsFatal(t *testing.T) {
	a := &Analysis{
		Bars:   []TimeInterval{{Start: 0, Duration: ms(1000)}},
		Beats:  []TimeInterval{{Start: 0, Duration: ms(1000)}},
		Tatums: []TimeInterval{{Start: 0, Duration: ms(1000)}},
		// no sections, no segments
	}
	err := Normalize(a, ms(1000))
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("got %v, want ErrEmptySequence", err)
	}
}

func TestIndexAt(t *testing.T) {
	s := []TimeInterval{
		{Start: 0, Duration: ms(1000)},
		{Start: ms(1000), Duration: ms(1000)},
		{Start: ms(2000), Duration: ms(1000)},
	}
	cases := []struct {
		pos  time.Duration
		want int
	}{
		{ms(-50), 0},  // before first clamps
		{0, 0},
		{ms(999), 0},
		{ms(1000), 1}, // boundary belongs to the next interval
		{ms(1500), 1},
		{ms(2999), 2},
		{ms(9999), 2}, // past last clamps
	}
	for _, c := range cases {
		if got := IndexAt(s, c.pos); got != c.want {
			t.Errorf("IndexAt(%v) = %d, want %d", c.pos, got, c.want)
		}
	}
}
