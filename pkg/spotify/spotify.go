// Package spotify wraps the official Spotify client library to enrich
// provider matches with catalogue metadata. It performs authentication using
// the client credentials flow and exposes the minimal surface required by the
// upload handler: given a recognized title and artist, fill in the Spotify
// track id, album name and album art when the fingerprinting provider did not
// supply them.
//
// All exported methods accept a context parameter allowing callers to cancel
// long running requests. The wrapped library does not provide context support
// so cancellation is checked explicitly before each call.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"

	"Song-Identify-Go/pkg/recognition"
)

// searcher defines the subset of the spotify.Client used by this package.
// It allows the concrete client to be replaced in tests.
type searcher interface {
	Search(query string, t spotify.SearchType) (*spotify.SearchResult, error)
}

// Enricher looks up provider matches in the Spotify catalogue.
type Enricher struct {
	client searcher
}

// NewEnricher authenticates using the client credentials flow and returns an
// Enricher ready for API calls. clientID and clientSecret are obtained from
// the Spotify developer dashboard.
func NewEnricher(clientID, clientSecret string) (*Enricher, error) {
	// The client credentials OAuth2 flow grants an application token which
	// allows searching the catalogue without a user login.
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}
	token, err := config.Token(context.Background())
	if err != nil {
		return nil, err
	}
	c := spotify.Authenticator{}.NewClient(token)
	return &Enricher{client: &c}, nil
}

// Enrich searches the catalogue for the track's title and artist and fills
// SpotifyTrackID, Album, AlbumArt and ReleaseDate where the provider left
// them empty. Synthetic tracks are never enriched: attaching real catalogue
// links to a fabricated match would disguise it as genuine.
func (e *Enricher) Enrich(ctx context.Context, track *recognition.NormalizedTrack) error {
	if track.Synthetic {
		return nil
	}
	if track.SpotifyTrackID != "" && track.AlbumArt != "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	results, err := e.client.Search(track.Title+" "+track.Artist, spotify.SearchTypeTrack)
	if err != nil {
		return err
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return fmt.Errorf("no tracks found")
	}
	hit := results.Tracks.Tracks[0]
	if track.SpotifyTrackID == "" {
		track.SpotifyTrackID = string(hit.ID)
	}
	if track.Album == "" {
		track.Album = hit.Album.Name
	}
	if track.AlbumArt == "" && len(hit.Album.Images) > 0 {
		track.AlbumArt = hit.Album.Images[0].URL
	}
	if track.ReleaseDate == "" {
		track.ReleaseDate = hit.Album.ReleaseDate
	}
	return nil
}

// TrackURL builds the public listen link for a Spotify track id.
func TrackURL(id string) string {
	return "https://open.spotify.com/track/" + id
}
