// This file defines the Prometheus collectors exported by the service and
// the instrumentation middleware feeding them.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"Song-Identify-Go/pkg/recognition"
)

var (
	identificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songidentify_identifications_total",
		Help: "Completed identifications by provider and synthetic flag.",
	}, []string{"provider", "synthetic"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "songidentify_http_request_duration_seconds",
		Help:    "HTTP request latency by path, method and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})
)

// recordIdentification counts one completed identification.
func recordIdentification(track recognition.NormalizedTrack) {
	identificationsTotal.WithLabelValues(track.Provider, strconv.FormatBool(track.Synthetic)).Inc()
}

// statusWriter wraps http.ResponseWriter to capture the status code for
// logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler with request logging and latency metrics.
func (app *Application) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		requestDuration.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(sw.status)).Observe(elapsed.Seconds())
		app.log().WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": elapsed.String(),
		}).Info("request")
	})
}
