package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"media-ingest/internal/jobs"
	"media-ingest/internal/logging"
)

// JobStatus returns the encode job record for polling clients.
func (h *Handlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeJSONError(w, "no encode job with id "+id, http.StatusNotFound)
			return
		}
		logging.Error("failed to load encode job %s: %v", id, err)
		writeJSONError(w, "failed to load encode job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, job)
}
