// This file implements the upload endpoint: accept a multipart audio clip,
// run it through the identification pipeline, persist the song and
// identification records and return the joined result.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"Song-Identify-Go/pkg/cache"
	"Song-Identify-Go/pkg/recognition"
	"Song-Identify-Go/pkg/spotify"
	"Song-Identify-Go/pkg/store"
)

// Identify handles POST /api/identify. The request must carry one multipart
// field named "audio" with an audio/* content type, at most MaxUploadBytes
// long. Validation failures return 400 before any provider is invoked or any
// store mutation happens. The spooled upload is removed on every exit path.
func (app *Application) Identify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.respondError(w, http.StatusMethodNotAllowed, "method not allowed", "use POST")
		return
	}
	maxUpload := app.maxUpload()
	// The extra headroom covers multipart framing so a clip exactly at the
	// limit still parses.
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))

	file, header, err := r.FormFile("audio")
	if err != nil {
		app.respondError(w, http.StatusBadRequest, "no audio file provided", "multipart field 'audio' is required")
		return
	}
	defer file.Close()

	if header.Size > maxUpload {
		app.respondError(w, http.StatusBadRequest, "file too large",
			"uploaded file exceeds the "+strconv.FormatInt(maxUpload, 10)+" byte limit")
		return
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "audio/") {
		app.respondError(w, http.StatusBadRequest, "unsupported media type",
			"expected an audio/* content type, got "+ct)
		return
	}

	// Spool the upload to a temporary file. The deferred remove is the
	// cleanup guarantee: it runs on success, failure and panic alike.
	tmp, err := os.CreateTemp(app.TempDir, "upload-*.audio")
	if err != nil {
		app.respondError(w, http.StatusInternalServerError, "upload failed", "could not store uploaded file")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, file)
	tmp.Close()
	if err != nil {
		app.respondError(w, http.StatusInternalServerError, "upload failed", "could not store uploaded file")
		return
	}
	audio, err := os.ReadFile(tmpPath)
	if err != nil {
		app.respondError(w, http.StatusInternalServerError, "upload failed", "could not read uploaded file")
		return
	}

	track, err := app.identifyAudio(r, audio)
	if err != nil {
		switch {
		case errors.Is(err, recognition.ErrEmptyAudio):
			app.respondError(w, http.StatusBadRequest, "empty audio file", "the uploaded file contains no data")
		case errors.Is(err, recognition.ErrNoMatch):
			app.respondJSON(w, http.StatusNotFound, errorResponse{
				Message:     "no match found",
				Error:       "none of the recognition services identified this clip",
				APIResponse: map[string]string{"status": "no_match"},
			})
		default:
			app.log().WithError(err).Error("identification failed")
			app.respondError(w, http.StatusInternalServerError, "identification service unavailable", err.Error())
		}
		return
	}

	result, err := app.persistResult(r, track, header.Filename)
	if err != nil {
		app.log().WithError(err).Error("persist identification")
		app.respondError(w, http.StatusInternalServerError, "failed to save identification", err.Error())
		return
	}
	recordIdentification(track)
	app.respondJSON(w, http.StatusOK, result)
}

// identifyAudio resolves the clip to a track, consulting the result cache
// before the provider chain. Cache failures are treated as misses; synthetic
// results are never cached so a later upload with working providers gets a
// real attempt.
func (app *Application) identifyAudio(r *http.Request, audio []byte) (recognition.NormalizedTrack, error) {
	ctx := r.Context()
	var key string
	if app.Cache != nil {
		key = cache.Key(audio)
		if raw, err := app.Cache.Get(ctx, key); err == nil {
			var track recognition.NormalizedTrack
			if err := json.Unmarshal(raw, &track); err == nil {
				app.log().WithField("provider", track.Provider).Debug("cache hit")
				return track, nil
			}
		}
	}

	track, err := app.Identifier.Identify(ctx, audio)
	if err != nil {
		return recognition.NormalizedTrack{}, err
	}
	if app.Enricher != nil {
		if err := app.Enricher.Enrich(ctx, &track); err != nil {
			app.log().WithError(err).Debug("spotify enrichment skipped")
		}
	}
	if app.Cache != nil && !track.Synthetic {
		if raw, err := json.Marshal(track); err == nil {
			if err := app.Cache.Set(ctx, key, raw, cache.DefaultTTL); err != nil {
				app.log().WithError(err).Warn("cache write failed")
			}
		}
	}
	return track, nil
}

// persistResult stores the song first and the identification second so an
// identification never references a song that does not exist, then reads
// back the joined record.
func (app *Application) persistResult(r *http.Request, track recognition.NormalizedTrack, filename string) (store.IdentificationResult, error) {
	ctx := r.Context()
	song, err := app.Store.CreateSong(ctx, songInput(track))
	if err != nil {
		return store.IdentificationResult{}, err
	}
	ident, err := app.Store.CreateIdentification(ctx, store.IdentificationInput{
		SongID:     song.ID,
		Filename:   filename,
		Confidence: track.Score,
		Provider:   track.Provider,
		Synthetic:  track.Synthetic,
	})
	if err != nil {
		return store.IdentificationResult{}, err
	}
	app.log().WithFields(logrus.Fields{
		"song":      song.Title,
		"artist":    song.Artist,
		"provider":  track.Provider,
		"synthetic": track.Synthetic,
	}).Info("identification stored")
	return app.Store.GetIdentificationWithSong(ctx, ident.ID)
}

// songInput maps a normalized track onto the stored song shape, applying the
// unknown-title/unknown-artist defaults and deriving year and listen link.
func songInput(track recognition.NormalizedTrack) store.SongInput {
	in := store.SongInput{
		Title:  track.Title,
		Artist: track.Artist,
	}
	if in.Title == "" {
		in.Title = "Unknown Title"
	}
	if in.Artist == "" {
		in.Artist = "Unknown Artist"
	}
	if track.Album != "" {
		in.Album = &track.Album
	}
	if y := releaseYear(track.ReleaseDate); y != 0 {
		in.Year = &y
	}
	if track.SpotifyTrackID != "" {
		u := spotify.TrackURL(track.SpotifyTrackID)
		in.SpotifyURL = &u
	}
	if track.AlbumArt != "" {
		in.AlbumArt = &track.AlbumArt
	}
	return in
}

// releaseYear parses the year component from a release date string such as
// "1975-10-31" or a bare "1975". Zero means unparseable.
func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(releaseDate[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
