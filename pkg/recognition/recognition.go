// Package recognition defines generic interfaces and data structures for
// interacting with audio fingerprinting providers. Implementations can wrap
// AudD, ACRCloud, Shazam or any other recognition service. By depending on
// this package the rest of the application can remain agnostic about the
// underlying platform.
//
// NormalizedTrack is the provider-agnostic shape every adapter produces after
// parsing its service's raw response. Adapters should populate as many fields
// as the upstream response allows and leave the rest zero-valued.
package recognition

import (
	"context"
	"errors"
)

// NormalizedTrack represents a single identified recording. Score is always
// expressed on a 0-100 scale regardless of how the upstream service reports
// confidence; adapters are responsible for the conversion.
type NormalizedTrack struct {
	Title          string
	Artist         string
	Album          string
	ReleaseDate    string
	Score          float64
	SpotifyTrackID string
	AlbumArt       string
	// Provider records which adapter produced the match so callers can
	// attribute (and debug) results.
	Provider string
	// Synthetic marks placeholder and heuristic results that did not come
	// from a real fingerprint match. Callers must never present synthetic
	// tracks as authoritative identifications.
	Synthetic bool
}

// ErrNoMatch is returned by a Provider when the service responded normally
// but did not recognize the submitted audio. The orchestrator treats it the
// same as a transport failure: log and continue down the chain.
var ErrNoMatch = errors.New("no match found")

// ErrEmptyAudio is returned when an identification is requested for a
// zero-length buffer. It is the only failure the orchestrator surfaces
// directly to callers.
var ErrEmptyAudio = errors.New("empty audio buffer")

// Provider wraps one external fingerprinting service. Recognize submits the
// audio buffer and parses the response into a NormalizedTrack. The context
// bounds the outbound call; implementations must honour cancellation.
//
// Configured reports whether the adapter holds the credentials it needs. The
// orchestrator skips unconfigured providers entirely rather than attempting
// a call that is guaranteed to fail.
type Provider interface {
	Name() string
	Configured() bool
	Recognize(ctx context.Context, audio []byte) (NormalizedTrack, error)
}

// Clamp returns a window into audio limited to max bytes starting at offset.
// Providers enforce different payload budgets, so each adapter trims its
// submission before upload. The slice aliases the input; callers must not
// mutate it.
func Clamp(audio []byte, offset, max int) []byte {
	if offset >= len(audio) {
		offset = 0
	}
	out := audio[offset:]
	if len(out) > max {
		out = out[:max]
	}
	return out
}
