// Package handlers contains the HTTP handlers for Song-Identify-Go. The
// Application struct bundles the dependencies used by the handlers so they
// can be injected explicitly; there are no process-wide singletons.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"Song-Identify-Go/pkg/cache"
	"Song-Identify-Go/pkg/recognition"
	"Song-Identify-Go/pkg/store"
)

// Identifier is the orchestrator contract consumed by the upload handler.
// Declaring the interface here lets tests substitute a fake pipeline.
type Identifier interface {
	Identify(ctx context.Context, audio []byte) (recognition.NormalizedTrack, error)
}

// Enricher augments a provider match with catalogue metadata. Enrichment is
// best effort; the upload handler ignores its errors.
type Enricher interface {
	Enrich(ctx context.Context, track *recognition.NormalizedTrack) error
}

// Application holds the dependencies shared by all HTTP handlers.
type Application struct {
	Store      store.Store
	Identifier Identifier
	// Enricher may be nil when no Spotify credentials are configured.
	Enricher Enricher
	// Cache may be nil; identical uploads then always hit the providers.
	Cache cache.Cache
	Log   *logrus.Logger
	// MaxUploadBytes caps the accepted audio clip size. Zero applies the
	// 10MiB default.
	MaxUploadBytes int64
	// TempDir overrides the spool directory for uploads. Empty means the
	// system default.
	TempDir string
	// HistoryLimit is the default page size for the history endpoint.
	// Zero applies store.DefaultHistoryLimit.
	HistoryLimit int
}

// DefaultMaxUpload caps uploads when Application.MaxUploadBytes is zero.
const DefaultMaxUpload = 10 << 20

func (app *Application) maxUpload() int64 {
	if app.MaxUploadBytes > 0 {
		return app.MaxUploadBytes
	}
	return DefaultMaxUpload
}

func (app *Application) log() *logrus.Logger {
	if app.Log != nil {
		return app.Log
	}
	return logrus.StandardLogger()
}

// errorResponse is the JSON body for all non-2xx responses. Message is a
// machine-stable summary; Error carries the human-readable detail. No stack
// traces are ever included.
type errorResponse struct {
	Message     string `json:"message"`
	Error       string `json:"error"`
	APIResponse any    `json:"apiResponse,omitempty"`
}

// respondJSON writes data as a JSON response with the given status code.
func (app *Application) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.log().WithError(err).Error("encode response")
	}
}

// respondError writes a structured error response.
func (app *Application) respondError(w http.ResponseWriter, status int, message, detail string) {
	app.respondJSON(w, status, errorResponse{Message: message, Error: detail})
}

// Health reports liveness for load balancers and uptime checks.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	app.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
