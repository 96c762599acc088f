package store

import (
	"context"
	"testing"
)

// TestMemoryRoundTrip verifies created records are retrievable unchanged and
// carry server-assigned fields.
func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	album := "Greatest Hits"
	year := 1981
	song, err := m.CreateSong(ctx, SongInput{Title: "Song", Artist: "Artist", Album: &album, Year: &year})
	if err != nil {
		t.Fatal(err)
	}
	if song.ID == "" || song.CreatedAt.IsZero() {
		t.Fatalf("missing server-assigned fields: %+v", song)
	}
	got, err := m.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Song" || got.Artist != "Artist" || *got.Album != album || *got.Year != year {
		t.Fatalf("unexpected song %+v", got)
	}

	ident, err := m.CreateIdentification(ctx, IdentificationInput{SongID: song.ID, Filename: "clip.mp3", Confidence: 92.5, Provider: "audd"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.GetIdentificationWithSong(ctx, ident.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Filename != "clip.mp3" || res.Confidence != 92.5 || res.Song.ID != song.ID {
		t.Fatalf("unexpected result %+v", res)
	}
}

// TestMemoryNotFound covers the lookup failure paths.
func TestMemoryNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.GetSong(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.GetIdentificationWithSong(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// An identification whose song cannot be resolved is also not found.
	ident, _ := m.CreateIdentification(ctx, IdentificationInput{SongID: "dangling", Filename: "f"})
	if _, err := m.GetIdentificationWithSong(ctx, ident.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for dangling reference, got %v", err)
	}
}

// TestMemoryRecentIdentifications verifies ordering, the limit and that
// dangling references are silently omitted.
func TestMemoryRecentIdentifications(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		song, _ := m.CreateSong(ctx, SongInput{Title: "S", Artist: "A"})
		ident, _ := m.CreateIdentification(ctx, IdentificationInput{SongID: song.ID, Filename: "f"})
		ids = append(ids, ident.ID)
	}
	// A dangling identification must never appear in the history.
	m.CreateIdentification(ctx, IdentificationInput{SongID: "missing", Filename: "f"})

	recent, err := m.RecentIdentifications(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recent))
	}
	if recent[0].ID != ids[2] || recent[1].ID != ids[1] {
		t.Fatalf("expected newest first, got %+v", recent)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Fatal("results not sorted by descending creation time")
		}
	}
}
