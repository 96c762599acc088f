// Command web initializes the Song-Identify-Go application and starts the
// HTTP server. Configuration is provided via environment variables (or a
// local .env file) for recognition provider credentials, the database
// location and the listen address. The server exposes a JSON API for audio
// identification and identification history.
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"Song-Identify-Go/pkg/acrcloud"
	"Song-Identify-Go/pkg/audd"
	"Song-Identify-Go/pkg/audiotag"
	"Song-Identify-Go/pkg/cache"
	"Song-Identify-Go/pkg/config"
	"Song-Identify-Go/pkg/handlers"
	"Song-Identify-Go/pkg/recognition"
	"Song-Identify-Go/pkg/shazam"
	"Song-Identify-Go/pkg/spotify"
	"Song-Identify-Go/pkg/store"
)

// main configures application dependencies and starts the HTTP server.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	// Select the persistence backend. The in-memory store is useful for
	// demos and development; SQLite is the production default.
	var st store.Store
	if cfg.StoreKind == "memory" {
		st = store.NewMemory()
	} else {
		db, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer db.Close()
		st = db
	}

	// Providers are listed in priority order. Adapters without credentials
	// report themselves unconfigured and are skipped by the orchestrator,
	// so all of them can be wired unconditionally.
	orchestrator := &recognition.Orchestrator{
		Providers: []recognition.Provider{
			&audd.Client{Token: cfg.AudDToken},
			&acrcloud.Client{Host: cfg.ACRHost, AccessKey: cfg.ACRAccessKey, Secret: cfg.ACRSecret},
			&shazam.Client{Key: cfg.RapidAPIKey},
			&audiotag.Client{Key: cfg.AudioTagAPIKey},
		},
		Timeout:       cfg.ProviderTimeout,
		GuessFallback: cfg.GuessFallback,
		Log:           log,
	}

	app := &handlers.Application{
		Store:          st,
		Identifier:     orchestrator,
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadBytes,
		HistoryLimit:   cfg.HistoryLimit,
	}

	// The Spotify enricher and the Redis result cache are both optional;
	// the service degrades gracefully without them.
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		enricher, err := spotify.NewEnricher(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			log.WithError(err).Warn("spotify enricher disabled")
		} else {
			app.Enricher = enricher
		}
	}
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Warn("result cache disabled")
		} else {
			defer c.Close()
			app.Cache = c
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/identify", app.Identify)
	mux.HandleFunc("/api/identifications", app.History)
	mux.HandleFunc("/health", app.Health)
	mux.Handle("/metrics", promhttp.Handler())

	handler := handlers.SecurityHeaders(app.Instrument(mux))

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}
