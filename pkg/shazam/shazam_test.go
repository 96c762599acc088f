package shazam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"Song-Identify-Go/pkg/recognition"
)

type rt struct {
	status int
	body   string
	req    *http.Request
}

func (r *rt) RoundTrip(req *http.Request) (*http.Response, error) {
	r.req = req
	rec := httptest.NewRecorder()
	rec.WriteHeader(r.status)
	rec.WriteString(r.body)
	return rec.Result(), nil
}

// TestRecognizeSuccess verifies the track object, section metadata and the
// Spotify hub action are parsed.
func TestRecognizeSuccess(t *testing.T) {
	data := `{"track":{"title":"Clocks","subtitle":"Coldplay","images":{"coverart":"https://img.example/c.jpg"},"sections":[{"metadata":[{"title":"Album","text":"A Rush of Blood to the Head"},{"title":"Released","text":"2002"}]}],"hub":{"providers":[{"type":"SPOTIFY","actions":[{"uri":"spotify:track:xyz"}]}]}}}`
	transport := &rt{status: 200, body: data}
	c := &Client{Key: "k", Client: &http.Client{Transport: transport}}
	track, err := c.Recognize(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatal(err)
	}
	if track.Title != "Clocks" || track.Artist != "Coldplay" {
		t.Fatalf("unexpected track %+v", track)
	}
	if track.Album != "A Rush of Blood to the Head" || track.ReleaseDate != "2002" {
		t.Fatalf("section metadata not parsed: %+v", track)
	}
	if track.SpotifyTrackID != "xyz" || track.AlbumArt != "https://img.example/c.jpg" {
		t.Fatalf("hub data not parsed: %+v", track)
	}
	if got := transport.req.Header.Get("X-RapidAPI-Key"); got != "k" {
		t.Fatalf("missing RapidAPI key header, got %q", got)
	}
}

// TestRecognizeNoMatch ensures a response without a track object maps to
// ErrNoMatch.
func TestRecognizeNoMatch(t *testing.T) {
	c := &Client{Key: "k", Client: &http.Client{Transport: &rt{status: 200, body: `{"matches":[]}`}}}
	_, err := c.Recognize(context.Background(), []byte("audio"))
	if !errors.Is(err, recognition.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

// TestRecognizeStatusError ensures non-200 responses are returned as errors.
func TestRecognizeStatusError(t *testing.T) {
	c := &Client{Key: "k", Client: &http.Client{Transport: &rt{status: 429}}}
	if _, err := c.Recognize(context.Background(), []byte("audio")); err == nil {
		t.Fatal("expected error")
	}
}
