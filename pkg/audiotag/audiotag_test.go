package audiotag

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Song-Identify-Go/pkg/recognition"
)

// scriptRT replays a fixed sequence of responses so the submit-then-poll
// exchange can be exercised without a live service.
type scriptRT struct {
	bodies []string
	calls  int
}

func (s *scriptRT) RoundTrip(*http.Request) (*http.Response, error) {
	body := s.bodies[s.calls]
	if s.calls < len(s.bodies)-1 {
		s.calls++
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusOK)
	rec.WriteString(body)
	return rec.Result(), nil
}

func init() {
	// Keep poll waits out of the test runtime.
	pollInterval = time.Millisecond
}

// TestRecognizeFound walks the full job lifecycle: submit, one pending poll,
// then a found result.
func TestRecognizeFound(t *testing.T) {
	transport := &scriptRT{bodies: []string{
		`{"success":true,"job_status":"wait","token":"tok123"}`,
		`{"result":"wait"}`,
		`{"result":"found","data":[{"tracks":[["Title","Artist","Album","240","12"]]}]}`,
	}}
	c := &Client{Key: "k", Client: &http.Client{Transport: transport}}
	track, err := c.Recognize(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatal(err)
	}
	if track.Title != "Title" || track.Artist != "Artist" || track.Album != "Album" {
		t.Fatalf("unexpected track %+v", track)
	}
	if track.Score != fixedScore {
		t.Fatalf("expected fixed score %d, got %v", fixedScore, track.Score)
	}
	if transport.calls != 2 {
		t.Fatalf("expected 3 calls, transport advanced %d times", transport.calls)
	}
}

// TestRecognizeNotFound maps a finished job without matches to ErrNoMatch.
func TestRecognizeNotFound(t *testing.T) {
	transport := &scriptRT{bodies: []string{
		`{"success":true,"token":"tok123"}`,
		`{"result":"not found"}`,
	}}
	c := &Client{Key: "k", Client: &http.Client{Transport: transport}}
	_, err := c.Recognize(context.Background(), []byte("audio"))
	if !errors.Is(err, recognition.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

// TestRecognizeSubmitFailure surfaces a rejected upload as an error.
func TestRecognizeSubmitFailure(t *testing.T) {
	transport := &scriptRT{bodies: []string{`{"success":false,"error":"bad api key"}`}}
	c := &Client{Key: "k", Client: &http.Client{Transport: transport}}
	if _, err := c.Recognize(context.Background(), []byte("audio")); err == nil {
		t.Fatal("expected error")
	}
}

// TestRecognizeContextCancelled stops polling when the context expires.
func TestRecognizeContextCancelled(t *testing.T) {
	transport := &scriptRT{bodies: []string{
		`{"success":true,"token":"tok123"}`,
		`{"result":"wait"}`,
	}}
	c := &Client{Key: "k", Client: &http.Client{Transport: transport}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Recognize(ctx, []byte("audio"))
	if err == nil {
		t.Fatal("expected context error")
	}
}
