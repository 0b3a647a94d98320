// Package source provides playback.Source implementations: an HTTP client
// for a Spotify-shaped web API and a self-contained demo source.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lightbeat/analysis"
	"lightbeat/playback"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client polls a Spotify-shaped HTTP API with a bearer token. Token
// acquisition and refresh are outside its scope; it only consumes one.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates a client for the given API base URL ("" for the
// Spotify default). Every request carries a 10s timeout on top of the
// caller's context.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("source: GET %s: %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("source: decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

type currentlyPlayingDTO struct {
	IsPlaying  bool  `json:"is_playing"`
	ProgressMs int64 `json:"progress_ms"`
	Item       *struct {
		ID string `json:"id"`
	} `json:"item"`
}

// CurrentlyPlaying implements playback.Source. A 204 response maps to
// "nothing playing".
func (c *Client) CurrentlyPlaying(ctx context.Context) (playback.PlaybackState, error) {
	var dto currentlyPlayingDTO
	status, err := c.get(ctx, "/me/player/currently-playing", &dto)
	if err != nil {
		return playback.PlaybackState{}, err
	}
	if status == http.StatusNoContent || dto.Item == nil {
		return playback.PlaybackState{}, nil
	}
	return playback.PlaybackState{
		TrackID:   dto.Item.ID,
		IsPlaying: dto.IsPlaying,
		Progress:  time.Duration(dto.ProgressMs) * time.Millisecond,
	}, nil
}

type trackDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

// Track implements playback.Source.
func (c *Client) Track(ctx context.Context, id string) (playback.Track, error) {
	var dto trackDTO
	if _, err := c.get(ctx, "/tracks/"+id, &dto); err != nil {
		return playback.Track{}, err
	}
	t := playback.Track{
		ID:       dto.ID,
		Name:     dto.Name,
		Duration: time.Duration(dto.DurationMs) * time.Millisecond,
	}
	if len(dto.Artists) > 0 {
		t.Artist = dto.Artists[0].Name
	}
	return t, nil
}

type intervalDTO struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type sectionDTO struct {
	intervalDTO
	Loudness      float64 `json:"loudness"`
	Tempo         float64 `json:"tempo"`
	Key           int     `json:"key"`
	Mode          int     `json:"mode"`
	TimeSignature int     `json:"time_signature"`
}

type segmentDTO struct {
	intervalDTO
	LoudnessStart   float64   `json:"loudness_start"`
	LoudnessMax     float64   `json:"loudness_max"`
	LoudnessMaxTime float64   `json:"loudness_max_time"`
	Pitches         []float64 `json:"pitches"`
	Timbre          []float64 `json:"timbre"`
}

type analysisDTO struct {
	Bars     []intervalDTO `json:"bars"`
	Beats    []intervalDTO `json:"beats"`
	Tatums   []intervalDTO `json:"tatums"`
	Sections []sectionDTO  `json:"sections"`
	Segments []segmentDTO  `json:"segments"`
}

// Analysis implements playback.Source. The API reports times in seconds;
// everything is converted to Duration at this boundary.
func (c *Client) Analysis(ctx context.Context, id string) (*analysis.Analysis, error) {
	var dto analysisDTO
	if _, err := c.get(ctx, "/audio-analysis/"+id, &dto); err != nil {
		return nil, err
	}

	a := &analysis.Analysis{
		Bars:     mapIntervals(dto.Bars),
		Beats:    mapIntervals(dto.Beats),
		Tatums:   mapIntervals(dto.Tatums),
		Sections: make([]analysis.Section, len(dto.Sections)),
		Segments: make([]analysis.Segment, len(dto.Segments)),
	}
	for i, s := range dto.Sections {
		a.Sections[i] = analysis.Section{
			TimeInterval:  mapInterval(s.intervalDTO),
			Loudness:      s.Loudness,
			Tempo:         s.Tempo,
			Key:           s.Key,
			Mode:          s.Mode,
			TimeSignature: s.TimeSignature,
		}
	}
	for i, s := range dto.Segments {
		seg := analysis.Segment{
			TimeInterval:    mapInterval(s.intervalDTO),
			LoudnessStart:   s.LoudnessStart,
			LoudnessMax:     s.LoudnessMax,
			LoudnessMaxTime: secondsToDuration(s.LoudnessMaxTime),
		}
		copy(seg.Pitches[:], s.Pitches)
		copy(seg.Timbre[:], s.Timbre)
		a.Segments[i] = seg
	}
	return a, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func mapInterval(d intervalDTO) analysis.TimeInterval {
	return analysis.TimeInterval{
		Start:      secondsToDuration(d.Start),
		Duration:   secondsToDuration(d.Duration),
		Confidence: d.Confidence,
	}
}

func mapIntervals(ds []intervalDTO) []analysis.TimeInterval {
	out := make([]analysis.TimeInterval, len(ds))
	for i, d := range ds {
		out[i] = mapInterval(d)
	}
	return out
}
