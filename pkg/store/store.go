// Package store provides the persistence layer used by the application. It
// defines the Song and Identification records together with the Store
// interface and ships two implementations: an in-memory store for tests and
// development, and a SQLite-backed store for production. The store owns the
// canonical collections; no other component mutates them directly.
//
// Songs and Identifications are append-only. There are no update or delete
// operations: once created a record is immutable, so implementations only
// need to guarantee that concurrent inserts do not corrupt state and that a
// record is readable immediately after its create call returns.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no record exists for the given id,
// or when an identification cannot be joined with its song.
var ErrNotFound = errors.New("record not found")

// DefaultHistoryLimit is applied by RecentIdentifications when the caller
// passes a non-positive limit.
const DefaultHistoryLimit = 10

// Song holds the metadata for one identified recording. Nullable fields use
// pointers so absent values serialize as JSON null rather than empty strings.
type Song struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      *string   `json:"album"`
	Year       *int      `json:"year"`
	Genre      *string   `json:"genre"`
	Duration   *string   `json:"duration"`
	SpotifyURL *string   `json:"spotifyUrl"`
	YouTubeURL *string   `json:"youtubeUrl"`
	AlbumArt   *string   `json:"albumArt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SongInput carries the caller-supplied fields for CreateSong. The id and
// creation timestamp are assigned by the store.
type SongInput struct {
	Title      string
	Artist     string
	Album      *string
	Year       *int
	Genre      *string
	Duration   *string
	SpotifyURL *string
	YouTubeURL *string
	AlbumArt   *string
}

// Identification records one upload request and the song it resolved to.
// Synthetic distinguishes placeholder/heuristic results from real provider
// matches so the history view can label them honestly.
type Identification struct {
	ID         string    `json:"id"`
	SongID     string    `json:"songId"`
	Filename   string    `json:"filename"`
	Confidence float64   `json:"confidence"`
	Provider   string    `json:"provider"`
	Synthetic  bool      `json:"synthetic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IdentificationInput carries the caller-supplied fields for
// CreateIdentification.
type IdentificationInput struct {
	SongID     string
	Filename   string
	Confidence float64
	Provider   string
	Synthetic  bool
}

// IdentificationResult is an Identification joined with its referenced Song.
// It is constructed on read and never stored.
type IdentificationResult struct {
	Identification
	Song Song `json:"song"`
}

// Store is the persistence contract shared by the in-memory and SQLite
// implementations. CreateSong and CreateIdentification assign fresh ids and
// timestamps and always succeed for well-formed input. Lookups return
// ErrNotFound for unknown ids; GetIdentificationWithSong also returns it when
// the referenced song is missing. RecentIdentifications returns at most limit
// results ordered by creation time descending, silently omitting entries
// whose song cannot be resolved.
type Store interface {
	CreateSong(ctx context.Context, in SongInput) (Song, error)
	GetSong(ctx context.Context, id string) (Song, error)
	CreateIdentification(ctx context.Context, in IdentificationInput) (Identification, error)
	GetIdentificationWithSong(ctx context.Context, id string) (IdentificationResult, error)
	RecentIdentifications(ctx context.Context, limit int) ([]IdentificationResult, error)
}
