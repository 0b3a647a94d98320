package playback

import (
	"context"
	"time"

	"lightbeat/analysis"
)

// PlaybackState is one poll of the remote service's ground truth.
type PlaybackState struct {
	TrackID   string
	IsPlaying bool
	Progress  time.Duration
}

// Track is the metadata the engine needs about a playable track.
type Track struct {
	ID       string
	Name     string
	Artist   string
	Duration time.Duration
}

// Source is the music-service collaborator. Implementations must honor
// ctx cancellation and apply their own request timeouts; the engine
// treats every error as transient and keeps polling.
type Source interface {
	// CurrentlyPlaying reports what is playing right now. IsPlaying
	// false with an empty TrackID means nothing is playing.
	CurrentlyPlaying(ctx context.Context) (PlaybackState, error)

	// Track fetches metadata for a track.
	Track(ctx context.Context, id string) (Track, error)

	// Analysis fetches the raw (un-normalized) structural analysis for a
	// track.
	Analysis(ctx context.Context, id string) (*analysis.Analysis, error)
}
