package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/sirupsen/logrus"

	"Song-Identify-Go/pkg/handlers"
	"Song-Identify-Go/pkg/recognition"
	"Song-Identify-Go/pkg/store"
)

// fakeIdentifier stands in for the provider pipeline so the endpoints can be
// exercised without network access.
type fakeIdentifier struct {
	track recognition.NormalizedTrack
}

func (f fakeIdentifier) Identify(_ context.Context, audio []byte) (recognition.NormalizedTrack, error) {
	if len(audio) == 0 {
		return recognition.NormalizedTrack{}, recognition.ErrEmptyAudio
	}
	return f.track, nil
}

// newServer creates an HTTP server with all routes registered using
// in-memory dependencies so the endpoints can be exercised in tests.
func newServer() *httptest.Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	app := &handlers.Application{
		Store: store.NewMemory(),
		Identifier: fakeIdentifier{track: recognition.NormalizedTrack{
			Title: "Song", Artist: "Artist", Score: 91, Provider: "audd",
		}},
		Log: log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/identify", app.Identify)
	mux.HandleFunc("/api/identifications", app.History)
	mux.HandleFunc("/health", app.Health)
	return httptest.NewServer(handlers.SecurityHeaders(mux))
}

func audioUpload(t *testing.T, url string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="audio"; filename="clip.mp3"`)
	hdr.Set("Content-Type", "audio/mpeg")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()
	resp, err := http.Post(url+"/api/identify", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// TestIdentifyEndpoint exercises the upload endpoint end to end and checks
// both the payload and the security headers.
func TestIdentifyEndpoint(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := audioUpload(t, srv.URL, []byte("pretend audio"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200 got %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("missing security header, got %q", got)
	}
	var res store.IdentificationResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Song.Title != "Song" || res.Filename != "clip.mp3" {
		t.Fatalf("unexpected result %+v", res)
	}
}

// TestHistoryEndpoint verifies uploads show up in the history, newest first.
func TestHistoryEndpoint(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	for i := 0; i < 3; i++ {
		resp := audioUpload(t, srv.URL, []byte{byte(i + 1)})
		resp.Body.Close()
	}
	resp, err := http.Get(srv.URL + "/api/identifications?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var results []store.IdentificationResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results got %d", len(results))
	}
}

// TestIdentifyEndpointRejectsEmptyForm returns 400 when no file is sent.
func TestIdentifyEndpointRejectsEmptyForm(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/identify", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

// TestHealthEndpoint checks the liveness probe.
func TestHealthEndpoint(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}
