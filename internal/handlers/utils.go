package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/upload"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeUploadError reports a validation failure to the uploader, with
// the machine-readable code alongside the message, and records the
// rejection.
func writeUploadError(w http.ResponseWriter, err *upload.Error) {
	metrics.UploadsRejected.WithLabelValues(string(err.Code)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	writeJSON(w, map[string]string{
		"error":   string(err.Code),
		"message": err.Message,
	})
}

// asUploadError extracts the typed validation error, if any.
func asUploadError(err error) (*upload.Error, bool) {
	var ue *upload.Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
