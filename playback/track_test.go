package playback

import (
	"sync"
	"testing"
	"time"

	"lightbeat/analysis"
)

// recorder collects emitted interval events thread-safely.
type recorder struct {
	mu     sync.Mutex
	events []IntervalEvent
}

func (r *recorder) handle(ev IntervalEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []IntervalEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IntervalEvent, len(r.events))
	copy(out, r.events)
	return out
}

func beats4x40() []analysis.TimeInterval {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return []analysis.TimeInterval{
		{Start: 0, Duration: ms(40)},
		{Start: ms(40), Duration: ms(40)},
		{Start: ms(80), Duration: ms(40)},
		{Start: ms(120), Duration: ms(40)},
	}
}

func TestIntervalTrack_FiresEveryBoundaryThenGoesTerminal(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.Seed(beats4x40())
	tr.SyncTo(0)

	time.Sleep(400 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (one per interior boundary): %+v", len(events), events)
	}
	for i, ev := range events {
		if ev.Index != i {
			t.Errorf("event %d has index %d", i, ev.Index)
		}
		if ev.Current.Start != time.Duration(i)*40*time.Millisecond {
			t.Errorf("event %d current start = %v", i, ev.Current.Start)
		}
		if ev.Next == nil {
			t.Fatalf("event %d has nil next", i)
		}
		if ev.Next.Start != ev.Current.End() {
			t.Errorf("event %d next start %v != current end %v", i, ev.Next.Start, ev.Current.End())
		}
	}

	if _, idx, ok := tr.Active(); !ok || idx != 3 {
		t.Errorf("track not terminal on last interval: idx=%d ok=%v", idx, ok)
	}
}

func TestIntervalTrack_SeedKillsPendingTimer(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.Seed(beats4x40())
	tr.SyncTo(0)

	// Reseed before the first boundary; the old timer must never fire.
	tr.Seed(beats4x40())

	time.Sleep(150 * time.Millisecond)
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("stale timer fired after reseed: %+v", events)
	}
}

func TestIntervalTrack_CancelIsIdempotent(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.Seed(beats4x40())
	tr.SyncTo(0)

	tr.Cancel()
	tr.Cancel()

	time.Sleep(150 * time.Millisecond)
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("canceled timer fired: %+v", events)
	}

	// Canceling after a natural fire is also a no-op.
	tr.SyncTo(100 * time.Millisecond) // inside interval 2, fires once at 120ms
	time.Sleep(100 * time.Millisecond)
	tr.Cancel()
	tr.Cancel()
	if events := rec.snapshot(); len(events) != 1 {
		t.Errorf("got %d events, want exactly 1: %+v", len(events), events)
	}
}

func TestIntervalTrack_SyncToClampsOutOfRange(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.Seed(beats4x40())

	tr.SyncTo(-time.Second)
	if _, idx, _ := tr.Active(); idx != 0 {
		t.Errorf("negative position clamps to %d, want 0", idx)
	}
	tr.Cancel()

	tr.SyncTo(time.Hour)
	if _, idx, _ := tr.Active(); idx != 3 {
		t.Errorf("position past end clamps to %d, want 3", idx)
	}
	time.Sleep(100 * time.Millisecond)
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("terminal sync emitted events: %+v", events)
	}
}

func TestIntervalTrack_SyncIntoLastIntervalIsTerminal(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.Seed(beats4x40())
	tr.SyncTo(130 * time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	if events := rec.snapshot(); len(events) != 0 {
		t.Errorf("no boundary follows the last interval, got %+v", events)
	}
}

func TestIntervalTrack_EmptySeedIsSafe(t *testing.T) {
	rec := &recorder{}
	tr := NewIntervalTrack(analysis.Beats, rec.handle)
	tr.SyncTo(time.Second)
	tr.Cancel()
	if _, _, ok := tr.Active(); ok {
		t.Error("unseeded track reports an active interval")
	}
}
