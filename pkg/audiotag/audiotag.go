// Package audiotag implements the recognition.Provider interface using the
// AudioTag.info API. Identification is a two-phase job: the sample upload
// returns a job token, then the result endpoint is polled until the job
// leaves the "wait" state. Polling is bounded by the request context, so the
// orchestrator's per-provider timeout caps the whole exchange.
package audiotag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Song-Identify-Go/pkg/recognition"
)

// Endpoint is the AudioTag API URL. Overridable in tests.
var Endpoint = "https://audiotag.info/api"

// maxSample caps the uploaded payload.
const maxSample = 700 << 10

// fixedScore is reported for AudioTag matches; the API does not expose a
// confidence value.
const fixedScore = 80

// pollInterval is the delay between result polls while a job is pending.
var pollInterval = time.Second

// Client provides access to the AudioTag identification API.
type Client struct {
	Key    string
	Client *http.Client
}

var _ recognition.Provider = (*Client)(nil)

// Name identifies this provider in logs and stored results.
func (c *Client) Name() string { return "audiotag" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.Key != "" }

// Recognize uploads the sample, then polls for the job result until the
// context expires or the job completes. A finished job without track data
// means no match.
func (c *Client) Recognize(ctx context.Context, audio []byte) (recognition.NormalizedTrack, error) {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	token, err := c.submit(ctx, recognition.Clamp(audio, 0, maxSample))
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	return c.poll(ctx, token)
}

// submit uploads the sample and returns the job token.
func (c *Client) submit(ctx context.Context, sample []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("action", "identify"); err != nil {
		return "", err
	}
	if err := mw.WriteField("apikey", c.Key); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", "sample")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(sample); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, Endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audiotag error: %s", resp.Status)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if !body.Success || body.Token == "" {
		return "", fmt.Errorf("audiotag submit failed: %s", body.Error)
	}
	return body.Token, nil
}

// poll queries the job result until it completes. The wait between polls is
// cancellable so a hung job does not outlive the provider timeout.
func (c *Client) poll(ctx context.Context, token string) (recognition.NormalizedTrack, error) {
	form := url.Values{
		"action": {"get_result"},
		"apikey": {c.Key},
		"token":  {token},
	}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, Endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return recognition.NormalizedTrack{}, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := c.Client.Do(req)
		if err != nil {
			return recognition.NormalizedTrack{}, err
		}
		track, pending, err := parseResult(resp)
		if err != nil {
			return recognition.NormalizedTrack{}, err
		}
		if !pending {
			return track, nil
		}
		select {
		case <-ctx.Done():
			return recognition.NormalizedTrack{}, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// parseResult decodes one get_result response. pending is true while the job
// is still executing.
func parseResult(resp *http.Response) (track recognition.NormalizedTrack, pending bool, err error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return track, false, fmt.Errorf("audiotag error: %s", resp.Status)
	}
	var body struct {
		Result string `json:"result"`
		Data   []struct {
			// Each track is a positional array:
			// [title, artist, album, length, offset].
			Tracks [][]string `json:"tracks"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return track, false, err
	}
	switch body.Result {
	case "wait":
		return track, true, nil
	case "not found":
		return track, false, recognition.ErrNoMatch
	case "found":
	default:
		return track, false, fmt.Errorf("audiotag result: %s", body.Result)
	}
	if len(body.Data) == 0 || len(body.Data[0].Tracks) == 0 {
		return track, false, recognition.ErrNoMatch
	}
	fields := body.Data[0].Tracks[0]
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	track = recognition.NormalizedTrack{
		Title:  get(0),
		Artist: get(1),
		Album:  get(2),
		Score:  fixedScore,
	}
	return track, false, nil
}
