// Package acrcloud implements the recognition.Provider interface using the
// ACRCloud identification API. Requests carry an HMAC-SHA1 signature over a
// canonical string built from the method, URI, access key and timestamp as
// required by ACRCloud's signature_version=1 scheme.
package acrcloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"Song-Identify-Go/pkg/recognition"
)

const identifyURI = "/v1/identify"

// maxSample caps the uploaded payload. ACRCloud matches on short samples, so
// only the leading window of the clip is submitted.
const maxSample = 512 << 10

// Client provides access to an ACRCloud identification project.
type Client struct {
	// Host is the project endpoint, e.g. "identify-eu-west-1.acrcloud.com".
	Host      string
	AccessKey string
	Secret    string
	Client    *http.Client
	// now is overridable so tests can pin the signature timestamp.
	now func() time.Time
}

var _ recognition.Provider = (*Client)(nil)

// Name identifies this provider in logs and stored results.
func (c *Client) Name() string { return "acrcloud" }

// Configured reports whether the host and both credentials are present.
func (c *Client) Configured() bool {
	return c.Host != "" && c.AccessKey != "" && c.Secret != ""
}

// sign computes the base64 HMAC-SHA1 signature ACRCloud expects for the
// request at the given unix timestamp.
func (c *Client) sign(timestamp string) string {
	toSign := "POST\n" + identifyURI + "\n" + c.AccessKey + "\naudio\n1\n" + timestamp
	mac := hmac.New(sha1.New, []byte(c.Secret))
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Recognize submits the leading window of the audio sample and parses
// ACRCloud's response. Status code 1001 means the service answered but found
// no match.
func (c *Client) Recognize(ctx context.Context, audio []byte) (recognition.NormalizedTrack, error) {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	if c.now == nil {
		c.now = time.Now
	}
	sample := recognition.Clamp(audio, 0, maxSample)
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"access_key":        c.AccessKey,
		"data_type":         "audio",
		"signature_version": "1",
		"signature":         c.sign(timestamp),
		"timestamp":         timestamp,
		"sample_bytes":      strconv.Itoa(len(sample)),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return recognition.NormalizedTrack{}, err
		}
	}
	fw, err := mw.CreateFormFile("sample", "sample")
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if _, err := fw.Write(sample); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if err := mw.Close(); err != nil {
		return recognition.NormalizedTrack{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+c.Host+identifyURI, &buf)
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
		return recognition.NormalizedTrack{}, fmt.Errorf("acrcloud error: %s", resp.Status)
	}

	var body struct {
		Status struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		} `json:"status"`
		Metadata struct {
			Music []struct {
				Title   string `json:"title"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name string `json:"name"`
				} `json:"album"`
				ReleaseDate      string  `json:"release_date"`
				Score            float64 `json:"score"`
				ExternalMetadata struct {
					Spotify struct {
						Track struct {
							ID string `json:"id"`
						} `json:"track"`
					} `json:"spotify"`
				} `json:"external_metadata"`
			} `json:"music"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return recognition.NormalizedTrack{}, err
	}
	// 1001 is ACRCloud's "no result" code; anything else non-zero is a
	// request failure.
	if body.Status.Code == 1001 {
		return recognition.NormalizedTrack{}, recognition.ErrNoMatch
	}
	if body.Status.Code != 0 {
		return recognition.NormalizedTrack{}, fmt.Errorf("acrcloud status %d: %s", body.Status.Code, body.Status.Msg)
	}
	if len(body.Metadata.Music) == 0 {
		return recognition.NormalizedTrack{}, recognition.ErrNoMatch
	}

	m := body.Metadata.Music[0]
	track := recognition.NormalizedTrack{
		Title:          m.Title,
		Album:          m.Album.Name,
		ReleaseDate:    m.ReleaseDate,
		Score:          m.Score,
		SpotifyTrackID: m.ExternalMetadata.Spotify.Track.ID,
	}
	if len(m.Artists) > 0 {
		track.Artist = m.Artists[0].Name
	}
	// Some projects report score as a 0-1 fraction; normalize to 0-100.
	if track.Score <= 1 {
		track.Score *= 100
	}
	return track, nil
}
