// SQLite-backed Store implementation. It wraps a sql.DB and creates the
// required schema on open; callers are expected to open a single instance
// with NewSQLite and reuse it for all operations. Pass ":memory:" for an
// ephemeral database in tests.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite wraps a sql.DB connection and implements the Store interface on top
// of two append-only tables.
type SQLite struct {
	*sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the SQLite database located at path. If the file does not
// exist it is created along with the required schema.
func NewSQLite(path string) (*SQLite, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT,
			year INTEGER,
			genre TEXT,
			duration TEXT,
			spotify_url TEXT,
			youtube_url TEXT,
			album_art TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS identifications (
			id TEXT PRIMARY KEY,
			song_id TEXT NOT NULL REFERENCES songs(id),
			filename TEXT NOT NULL,
			confidence REAL NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			synthetic INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ident_created ON identifications(created_at DESC)`,
	}
	// Errors here likely mean the database file is not writable.
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &SQLite{d}, nil
}

// CreateSong inserts a new song row with a generated id and timestamp and
// returns the stored record.
func (db *SQLite) CreateSong(ctx context.Context, in SongInput) (Song, error) {
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
	_, err := db.ExecContext(ctx, `INSERT INTO songs(id, title, artist, album, year, genre, duration, spotify_url, youtube_url, album_art, created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Title, s.Artist, s.Album, s.Year, s.Genre, s.Duration, s.SpotifyURL, s.YouTubeURL, s.AlbumArt, s.CreatedAt)
	if err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}
	return s, nil
}

// GetSong looks up a song by id.
func (db *SQLite) GetSong(ctx context.Context, id string) (Song, error) {
	row := db.QueryRowContext(ctx, `SELECT id, title, artist, album, year, genre, duration, spotify_url, youtube_url, album_art, created_at FROM songs WHERE id=?`, id)
	return scanSong(row)
}

// CreateIdentification inserts a new identification row linked to an existing
// song and returns the stored record.
func (db *SQLite) CreateIdentification(ctx context.Context, in IdentificationInput) (Identification, error) {
	ident := Identification{
		ID:         uuid.NewString(),
		SongID:     in.SongID,
		Filename:   in.Filename,
		Confidence: in.Confidence,
		Provider:   in.Provider,
		Synthetic:  in.Synthetic,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := db.ExecContext(ctx, `INSERT INTO identifications(id, song_id, filename, confidence, provider, synthetic, created_at) VALUES(?,?,?,?,?,?,?)`,
		ident.ID, ident.SongID, ident.Filename, ident.Confidence, ident.Provider, ident.Synthetic, ident.CreatedAt)
	if err != nil {
		return Identification{}, fmt.Errorf("insert identification: %w", err)
	}
	return ident, nil
}

// GetIdentificationWithSong returns the identification joined with its song.
// ErrNotFound covers both a missing identification and a dangling song
// reference; the inner join collapses the two cases.
func (db *SQLite) GetIdentificationWithSong(ctx context.Context, id string) (IdentificationResult, error) {
	row := db.QueryRowContext(ctx, joinQuery+` WHERE i.id=?`, id)
	res, err := scanResult(row)
	if err == sql.ErrNoRows {
		return IdentificationResult{}, ErrNotFound
	}
	return res, err
}

// RecentIdentifications returns up to limit joined records ordered by
// creation time descending. The inner join silently drops identifications
// whose song row is missing.
func (db *SQLite) RecentIdentifications(ctx context.Context, limit int) ([]IdentificationResult, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.QueryContext(ctx, joinQuery+` ORDER BY i.created_at DESC, i.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IdentificationResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

const joinQuery = `SELECT i.id, i.song_id, i.filename, i.confidence, i.provider, i.synthetic, i.created_at,
	s.id, s.title, s.artist, s.album, s.year, s.genre, s.duration, s.spotify_url, s.youtube_url, s.album_art, s.created_at
	FROM identifications i INNER JOIN songs s ON s.id = i.song_id`

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (Song, error) {
	var s Song
	err := row.Scan(&s.ID, &s.Title, &s.Artist, &s.Album, &s.Year, &s.Genre, &s.Duration, &s.SpotifyURL, &s.YouTubeURL, &s.AlbumArt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Song{}, ErrNotFound
	}
	if err != nil {
		return Song{}, err
	}
	return s, nil
}

func scanResult(row rowScanner) (IdentificationResult, error) {
	var res IdentificationResult
	err := row.Scan(
		&res.ID, &res.SongID, &res.Filename, &res.Confidence, &res.Provider, &res.Synthetic, &res.Identification.CreatedAt,
		&res.Song.ID, &res.Song.Title, &res.Song.Artist, &res.Song.Album, &res.Song.Year, &res.Song.Genre, &res.Song.Duration,
		&res.Song.SpotifyURL, &res.Song.YouTubeURL, &res.Song.AlbumArt, &res.Song.CreatedAt)
	if err != nil {
		return IdentificationResult{}, err
	}
	return res, nil
}
