// Package audd implements the recognition.Provider interface using the AudD
// music recognition API. The audio sample is submitted as a multipart upload
// together with the account token; AudD responds with track metadata and,
// when requested, matching Spotify catalogue entries.
//
// Network calls are performed using the provided http.Client allowing
// callers to substitute a test client.
package audd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"Song-Identify-Go/pkg/recognition"
)

// Endpoint is the AudD recognition URL. Overridable in tests.
var Endpoint = "https://api.audd.io/"

// maxSample caps the uploaded payload; AudD rejects larger bodies.
const maxSample = 800 << 10

// fixedScore is reported for AudD matches. The API does not return a
// confidence value, so a per-provider constant is used on the 0-100 scale.
const fixedScore = 90

// Client provides access to the AudD API.
type Client struct {
	Token  string
	Client *http.Client
}

var _ recognition.Provider = (*Client)(nil)

// Name identifies this provider in logs and stored results.
func (c *Client) Name() string { return "audd" }

// Configured reports whether an API token is present.
func (c *Client) Configured() bool { return c.Token != "" }

// Recognize submits the audio sample and parses AudD's response. A null
// result field means the service answered but found no match.
func (c *Client) Recognize(ctx context.Context, audio []byte) (recognition.NormalizedTrack, error) {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	sample := recognition.Clamp(audio, 0, maxSample)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("api_token", c.Token); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if err := mw.WriteField("return", "spotify"); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	fw, err := mw.CreateFormFile("file", "sample")
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if _, err := fw.Write(sample); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if err := mw.Close(); err != nil {
		return recognition.NormalizedTrack{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, Endpoint, &buf)
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.Client.Do(req)
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return recognition.NormalizedTrack{}, fmt.Errorf("audd error: %s", resp.Status)
	}

	var body struct {
		Status string `json:"status"`
		Result *struct {
			Artist      string `json:"artist"`
			Title       string `json:"title"`
			Album       string `json:"album"`
			ReleaseDate string `json:"release_date"`
			Spotify     *struct {
				ID    string `json:"id"`
				Album struct {
					Images []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
			} `json:"spotify"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if body.Status != "success" {
		return recognition.NormalizedTrack{}, fmt.Errorf("audd status: %s", body.Status)
	}
	if body.Result == nil {
		return recognition.NormalizedTrack{}, recognition.ErrNoMatch
	}

	track := recognition.NormalizedTrack{
		Title:       body.Result.Title,
		Artist:      body.Result.Artist,
		Album:       body.Result.Album,
		ReleaseDate: body.Result.ReleaseDate,
		Score:       fixedScore,
	}
	if sp := body.Result.Spotify; sp != nil {
		track.SpotifyTrackID = sp.ID
		if len(sp.Album.Images) > 0 {
			track.AlbumArt = sp.Album.Images[0].URL
		}
	}
	return track, nil
}
