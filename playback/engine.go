package playback

import (
	"context"
	"fmt"
	"time"

	"lightbeat/analysis"
	"lightbeat/debug"
)

const (
	// DefaultPollInterval is how often the engine reconciles against the
	// remote service.
	DefaultPollInterval = 1000 * time.Millisecond
	// DefaultDriftThreshold is how far the simulated position may stray
	// from the polled one before the engine re-anchors. Large enough to
	// absorb normal polling jitter, small enough that light-to-music
	// misalignment stays imperceptible.
	DefaultDriftThreshold = 100 * time.Millisecond
)

// Engine reconciles the locally simulated playback state with the remote
// service's ground truth and owns the lifecycle of the clock and the five
// interval tracks. External consumers observe it only through registered
// handlers; they never mutate engine state.
type Engine struct {
	source         Source
	clock          *Clock
	pollInterval   time.Duration
	driftThreshold time.Duration

	tracks [analysis.NumGranularities]*IntervalTrack

	// Session state, touched only from the poll loop.
	current  *Track
	analysis *analysis.Analysis

	// Handler registration happens before Run; slices are read-only
	// afterwards.
	onTrackChanged []func(Track, *analysis.Analysis)
	onTrackStopped []func()
	onError        []func(error)
	onInterval     [analysis.NumGranularities][]IntervalHandler
}

// NewEngine creates an engine polling src. Non-positive pollInterval or
// driftThreshold fall back to the defaults.
func NewEngine(src Source, pollInterval, driftThreshold time.Duration) *Engine {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if driftThreshold <= 0 {
		driftThreshold = DefaultDriftThreshold
	}
	e := &Engine{
		source:         src,
		clock:          NewClock(),
		pollInterval:   pollInterval,
		driftThreshold: driftThreshold,
	}
	for g := analysis.Granularity(0); g < analysis.NumGranularities; g++ {
		g := g
		e.tracks[g] = NewIntervalTrack(g, func(ev IntervalEvent) {
			for _, h := range e.onInterval[g] {
				h(ev)
			}
		})
	}
	return e
}

// OnTrackChanged registers a handler for new-track events. The handler
// receives the track metadata and its normalized analysis. Must be called
// before Run.
func (e *Engine) OnTrackChanged(h func(Track, *analysis.Analysis)) {
	e.onTrackChanged = append(e.onTrackChanged, h)
}

// OnTrackStopped registers a handler for playback stopping. Must be
// called before Run.
func (e *Engine) OnTrackStopped(h func()) {
	e.onTrackStopped = append(e.onTrackStopped, h)
}

// OnError registers a handler for track-fatal errors (missing or broken
// analysis). The engine has already dropped to the no-track state when
// the handler runs. Must be called before Run.
func (e *Engine) OnError(h func(error)) {
	e.onError = append(e.onError, h)
}

// OnInterval registers a handler for boundary events of one granularity.
// Must be called before Run.
func (e *Engine) OnInterval(g analysis.Granularity, h IntervalHandler) {
	e.onInterval[g] = append(e.onInterval[g], h)
}

// Position returns the simulated playback position of the current track.
func (e *Engine) Position() time.Duration {
	return e.clock.Position()
}

// Run polls the source until ctx is canceled. Each tick is scheduled only
// after the previous one's work, including any slow fetches, completes,
// so two ticks can never overlap. A failed poll is logged and the loop
// keeps going; Run only returns on ctx cancellation.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.pollOnce(ctx)
		select {
		case <-ctx.Done():
			e.stopSession()
			return ctx.Err()
		case <-time.After(e.pollInterval):
		}
	}
}

// pollOnce performs one reconciliation pass.
func (e *Engine) pollOnce(ctx context.Context) {
	sent := time.Now()
	state, err := e.source.CurrentlyPlaying(ctx)
	if err != nil {
		// Transient by assumption; the loop keeps polling.
		debug.LogEvery(10, "sync", "poll failed: %v", err)
		return
	}

	switch {
	case !state.IsPlaying || state.TrackID == "":
		if e.current != nil {
			debug.Log("sync", "playback stopped")
			e.stopSession()
			for _, h := range e.onTrackStopped {
				h()
			}
		}

	case e.current == nil || e.current.ID != state.TrackID:
		e.startSession(ctx, state, sent)

	default:
		// Same track: correct drift only when it exceeds the threshold,
		// otherwise leave the timers alone.
		remote := state.Progress + time.Since(sent)
		drift := e.clock.Position() - remote
		if drift < 0 {
			drift = -drift
		}
		if drift > e.driftThreshold {
			debug.Log("sync", "drift %v > %v, re-anchoring %s to %v", drift, e.driftThreshold, state.TrackID, remote)
			e.resyncTo(remote)
		}
	}
}

// startSession tears down any previous session, fetches metadata and
// analysis for the new track, and anchors everything to the compensated
// remote position. The fetches are the one long-latency operation the
// engine performs; playback keeps progressing meanwhile, so the position
// is re-compensated after they finish.
func (e *Engine) startSession(ctx context.Context, state PlaybackState, sent time.Time) {
	e.stopSession()

	track, err := e.source.Track(ctx, state.TrackID)
	if err != nil {
		e.failSession(fmt.Errorf("fetch track %s: %w", state.TrackID, err))
		return
	}

	a, err := e.source.Analysis(ctx, state.TrackID)
	if err != nil {
		e.failSession(fmt.Errorf("fetch analysis %s: %w", state.TrackID, err))
		return
	}
	if err := analysis.Normalize(a, track.Duration); err != nil {
		e.failSession(fmt.Errorf("analysis %s: %w", state.TrackID, err))
		return
	}

	pos := state.Progress + time.Since(sent)
	e.clock.Anchor(track.ID, pos)
	for g := analysis.Granularity(0); g < analysis.NumGranularities; g++ {
		e.tracks[g].Seed(a.Intervals(g))
		e.tracks[g].SyncTo(pos)
	}

	e.current = &track
	e.analysis = a
	debug.Log("sync", "track changed: %s - %s (%v), anchored at %v", track.Artist, track.Name, track.Duration, pos)
	for _, h := range e.onTrackChanged {
		h(track, a)
	}
}

// resyncTo re-anchors the clock and every track to a ground-truth
// position. All pending timers are canceled before re-arming; no stale
// timer may fire after this.
func (e *Engine) resyncTo(pos time.Duration) {
	for _, t := range e.tracks {
		t.Cancel()
	}
	e.clock.Anchor(e.current.ID, pos)
	for _, t := range e.tracks {
		t.SyncTo(pos)
	}
}

// stopSession cancels all timers and clears the clock and session state.
func (e *Engine) stopSession() {
	for _, t := range e.tracks {
		t.Cancel()
	}
	e.clock.Clear()
	e.current = nil
	e.analysis = nil
}

// failSession handles a track-fatal error: the engine reverts to the
// no-track state and reports the error, while the surrounding poll loop
// keeps running.
func (e *Engine) failSession(err error) {
	debug.Log("sync", "session failed: %v", err)
	e.stopSession()
	for _, h := range e.onError {
		h(err)
	}
}
