// This file implements the history endpoint listing recent identifications
// joined with their songs.
package handlers

import (
	"net/http"
	"strconv"

	"Song-Identify-Go/pkg/store"
)

// History handles GET /api/identifications. The optional limit query
// parameter must be a positive integer; anything absent or unparseable falls
// back to the configured default.
func (app *Application) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.respondError(w, http.StatusMethodNotAllowed, "method not allowed", "use GET")
		return
	}
	limit := app.HistoryLimit
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	results, err := app.Store.RecentIdentifications(r.Context(), limit)
	if err != nil {
		app.log().WithError(err).Error("load history")
		app.respondError(w, http.StatusInternalServerError, "failed to load history", err.Error())
		return
	}
	if results == nil {
		results = []store.IdentificationResult{}
	}
	app.respondJSON(w, http.StatusOK, results)
}
