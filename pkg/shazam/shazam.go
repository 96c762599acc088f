// Package shazam implements the recognition.Provider interface using the
// Shazam API exposed through RapidAPI. Unlike the multipart providers, the
// detect endpoint takes the raw audio sample base64-encoded as a plain text
// body and authenticates with RapidAPI headers.
package shazam

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"Song-Identify-Go/pkg/recognition"
)

// Endpoint is the RapidAPI detect URL. Overridable in tests.
var Endpoint = "https://shazam.p.rapidapi.com/songs/v2/detect"

// apiHost is sent in the X-RapidAPI-Host header.
const apiHost = "shazam.p.rapidapi.com"

// sampleOffset skips the container header so the submitted window starts in
// actual audio data; sampleMax caps the payload the endpoint accepts.
const (
	sampleOffset = 44
	sampleMax    = 500 << 10
)

// fixedScore is reported for Shazam matches; the API does not expose a
// confidence value.
const fixedScore = 95

// Client provides access to the Shazam detection API via RapidAPI.
type Client struct {
	Key    string
	Client *http.Client
}

var _ recognition.Provider = (*Client)(nil)

// Name identifies this provider in logs and stored results.
func (c *Client) Name() string { return "shazam" }

// Configured reports whether a RapidAPI key is present.
func (c *Client) Configured() bool { return c.Key != "" }

// Recognize submits a base64-encoded window of the sample and parses the
// track section of Shazam's response. An absent track object means no match.
func (c *Client) Recognize(ctx context.Context, audio []byte) (recognition.NormalizedTrack, error) {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	sample := recognition.Clamp(audio, sampleOffset, sampleMax)
	body := base64.StdEncoding.EncodeToString(sample)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, Endpoint, strings.NewReader(body))
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-RapidAPI-Key", c.Key)
	req.Header.Set("X-RapidAPI-Host", apiHost)
	resp, err := c.Client.Do(req)
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return recognition.NormalizedTrack{}, fmt.Errorf("shazam error: %s", resp.Status)
	}

	var parsed struct {
		Track *struct {
			Title    string `json:"title"`
			Subtitle string `json:"subtitle"`
			Images   struct {
				CoverArt string `json:"coverart"`
			} `json:"images"`
			Sections []struct {
				Metadata []struct {
					Title string `json:"title"`
					Text  string `json:"text"`
				} `json:"metadata"`
			} `json:"sections"`
			Hub struct {
				Providers []struct {
					Type    string `json:"type"`
					Actions []struct {
						URI string `json:"uri"`
					} `json:"actions"`
				} `json:"providers"`
			} `json:"hub"`
		} `json:"track"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if parsed.Track == nil || parsed.Track.Title == "" {
		return recognition.NormalizedTrack{}, recognition.ErrNoMatch
	}

	track := recognition.NormalizedTrack{
		Title:    parsed.Track.Title,
		Artist:   parsed.Track.Subtitle,
		Score:    fixedScore,
		AlbumArt: parsed.Track.Images.CoverArt,
	}
	// Album and release year arrive as loosely-typed section metadata.
	for _, sec := range parsed.Track.Sections {
		for _, md := range sec.Metadata {
			switch md.Title {
			case "Album":
				track.Album = md.Text
			case "Released":
				track.ReleaseDate = md.Text
			}
		}
	}
	for _, p := range parsed.Track.Hub.Providers {
		if p.Type != "SPOTIFY" {
			continue
		}
		for _, a := range p.Actions {
			if id, ok := strings.CutPrefix(a.URI, "spotify:track:"); ok {
				track.SpotifyTrackID = id
			}
		}
	}
	return track, nil
}
