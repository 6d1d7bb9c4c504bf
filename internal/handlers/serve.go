package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"media-ingest/internal/assets"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/storage"
	"media-ingest/internal/streaming"
)

// ServeImage returns a published image in full.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if strings.Contains(name, "..") {
		writeJSONError(w, "invalid image name", http.StatusBadRequest)
		return
	}

	obj, size, err := h.store.Open(r.Context(), "images/"+name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeJSONError(w, "invalid image name", http.StatusBadRequest)
			return
		}
		if errors.Is(err, fs.ErrNotExist) {
			writeJSONError(w, "no image named "+name, http.StatusNotFound)
			return
		}
		logging.Error("failed to open image %s: %v", name, err)
		writeJSONError(w, "failed to open image", http.StatusInternalServerError)
		return
	}
	defer closeObject(obj, name)

	w.Header().Set("Content-Type", assets.ContentTypeFor(name))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	if _, err := io.Copy(w, obj); err != nil {
		logging.Debug("image send interrupted for %s: %v", name, err)
	}
}

// StreamVideo serves one byte window of a published video. A Range
// header is mandatory; open-ended ranges are answered with a bounded
// chunk so the client re-requests as playback advances.
func (h *Handlers) StreamVideo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if strings.Contains(name, "..") {
		writeJSONError(w, "invalid video name", http.StatusBadRequest)
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		writeJSONError(w, "Range header is required", http.StatusBadRequest)
		return
	}

	obj, size, err := h.store.Open(r.Context(), "videos/"+name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeJSONError(w, "invalid video name", http.StatusBadRequest)
			return
		}
		if errors.Is(err, fs.ErrNotExist) {
			writeJSONError(w, "no video named "+name, http.StatusNotFound)
			return
		}
		logging.Error("failed to open video %s: %v", name, err)
		writeJSONError(w, "failed to open video", http.StatusInternalServerError)
		return
	}
	defer closeObject(obj, name)

	window, err := streaming.ParseRange(rangeHeader, size, streaming.DefaultChunkSize)
	if err != nil {
		if errors.Is(err, streaming.ErrUnsatisfiableRange) {
			w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
			writeJSONError(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		writeJSONError(w, "malformed Range header", http.StatusBadRequest)
		return
	}

	if _, err := obj.Seek(window.Start, io.SeekStart); err != nil {
		logging.Error("failed to seek video %s to %d: %v", name, window.Start, err)
		writeJSONError(w, "failed to read video", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", assets.ContentTypeFor(name))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Range", window.ContentRange())
	w.Header().Set("Content-Length", strconv.FormatInt(window.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)

	n, err := streaming.StreamWithTimeout(r.Context(), w, io.LimitReader(obj, window.Length()), h.streamConfig)
	metrics.StreamBytesSent.WithLabelValues("video").Add(float64(n))
	if err != nil {
		recordStreamError(err)
		logging.Debug("video stream ended early for %s: %v", name, err)
	}
}

// ServeHLS serves the master playlist, variant playlists, and segments
// produced by an encode job.
func (h *Handlers) ServeHLS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	path := vars["path"]

	// Keys are flat; reject any attempt to climb out of the job prefix.
	// The job id is user-supplied too, so it gets the same check.
	if strings.Contains(path, "..") || strings.Contains(id, "..") {
		writeJSONError(w, "invalid path", http.StatusBadRequest)
		return
	}

	key := "video-hls/" + id + "/" + path
	obj, size, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeJSONError(w, "invalid path", http.StatusBadRequest)
			return
		}
		if errors.Is(err, fs.ErrNotExist) {
			writeJSONError(w, "no HLS asset "+path+" for job "+id, http.StatusNotFound)
			return
		}
		logging.Error("failed to open HLS asset %s: %v", key, err)
		writeJSONError(w, "failed to open HLS asset", http.StatusInternalServerError)
		return
	}
	defer closeObject(obj, key)

	w.Header().Set("Content-Type", assets.ContentTypeFor(path))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	n, err := streaming.StreamWithTimeout(r.Context(), w, obj, h.streamConfig)
	metrics.StreamBytesSent.WithLabelValues("hls").Add(float64(n))
	if err != nil {
		recordStreamError(err)
		logging.Debug("HLS stream ended early for %s: %v", key, err)
	}
}

func recordStreamError(err error) {
	switch {
	case errors.Is(err, streaming.ErrWriteTimeout):
		metrics.StreamErrors.WithLabelValues("timeout").Inc()
	case errors.Is(err, streaming.ErrClientGone):
		metrics.StreamErrors.WithLabelValues("client_gone").Inc()
	default:
		metrics.StreamErrors.WithLabelValues("canceled").Inc()
	}
}

func closeObject(c io.Closer, key string) {
	if err := c.Close(); err != nil {
		logging.Warn("failed to close object %s: %v", key, err)
	}
}
