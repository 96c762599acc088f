// In-memory Store implementation. Used by tests and credential-free demo
// deployments where a database file is unwanted. A mutex guards the maps so
// concurrent uploads can insert safely; each insert is keyed by a freshly
// generated uuid so there is no contention beyond the lock itself.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory satisfies Store using process-local maps. The zero value is not
// usable; construct instances with NewMemory.
type Memory struct {
	mu    sync.Mutex
	songs map[string]Song
	// idents preserves insertion order so RecentIdentifications can break
	// equal-timestamp ties by recency of insertion.
	idents []Identification
	byID   map[string]int
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		songs: make(map[string]Song),
		byID:  make(map[string]int),
	}
}

// CreateSong assigns a new id and timestamp and stores the record.
func (m *Memory) CreateSong(_ context.Context, in SongInput) (Song, error) {
	s := Song{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Artist:     in.Artist,
		Album:      in.Album,
		Year:       in.Year,
		Genre:      in.Genre,
		Duration:   in.Duration,
		SpotifyURL: in.SpotifyURL,
		YouTubeURL: in.YouTubeURL,
		AlbumArt:   in.AlbumArt,
		CreatedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.songs[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// GetSong looks up a song by id.
func (m *Memory) GetSong(_ context.Context, id string) (Song, error) {
	m.mu.Lock()
	s, ok := m.songs[id]
	m.mu.Unlock()
	if !ok {
		return Song{}, ErrNotFound
	}
	return s, nil
}

// CreateIdentification assigns a new id and timestamp and stores the record.
func (m *Memory) CreateIdentification(_ context.Context, in IdentificationInput) (Identification, error) {
	ident := Identification{
		ID:         uuid.NewString(),
		SongID:     in.SongID,
		Filename:   in.Filename,
		Confidence: in.Confidence,
		Provider:   in.Provider,
		Synthetic:  in.Synthetic,
		CreatedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.byID[ident.ID] = len(m.idents)
	m.idents = append(m.idents, ident)
	m.mu.Unlock()
	return ident, nil
}

// GetIdentificationWithSong joins an identification with its song. ErrNotFound
// is returned when either side of the join is missing.
func (m *Memory) GetIdentificationWithSong(_ context.Context, id string) (IdentificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.byID[id]
	if !ok {
		return IdentificationResult{}, ErrNotFound
	}
	ident := m.idents[idx]
	song, ok := m.songs[ident.SongID]
	if !ok {
		return IdentificationResult{}, ErrNotFound
	}
	return IdentificationResult{Identification: ident, Song: song}, nil
}

// RecentIdentifications returns up to limit joined records, newest first.
// Identifications whose song cannot be resolved are skipped.
func (m *Memory) RecentIdentifications(_ context.Context, limit int) ([]IdentificationResult, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start from reverse insertion order so a stable sort on CreatedAt
	// leaves later inserts first among equal timestamps.
	ordered := make([]Identification, 0, len(m.idents))
	for i := len(m.idents) - 1; i >= 0; i-- {
		ordered = append(ordered, m.idents[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	var out []IdentificationResult
	for _, ident := range ordered {
		song, ok := m.songs[ident.SongID]
		if !ok {
			continue
		}
		out = append(out, IdentificationResult{Identification: ident, Song: song})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
