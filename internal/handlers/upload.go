package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"media-ingest/internal/assets"
	"media-ingest/internal/logging"
	"media-ingest/internal/media"
	"media-ingest/internal/metrics"
)

// uploadResponse is the payload for every successful upload.
type uploadResponse struct {
	Result []assets.MediaAsset `json:"result"`
	JobID  string              `json:"job_id,omitempty"`
}

// UploadImage accepts up to four image files under the "image" field,
// normalizes each one, and returns the published assets.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	staged, err := h.imageIntake.Parse(r)
	if err != nil {
		if ue, ok := asUploadError(err); ok {
			writeUploadError(w, ue)
			return
		}
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	result := make([]assets.MediaAsset, 0, len(staged))
	for i, f := range staged {
		start := time.Now()
		asset, err := h.normalizer.Normalize(r.Context(), f)
		metrics.NormalizationDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.NormalizationsTotal.WithLabelValues("failed").Inc()
			logging.Error("image normalization failed: %v", err)

			// The normalizer removed its own file; release the rest.
			for _, rest := range staged[i+1:] {
				rest.Remove()
			}
			if errors.Is(err, media.ErrImageProcessingFailed) {
				writeJSONError(w, "image processing failed", http.StatusUnprocessableEntity)
			} else {
				writeJSONError(w, "failed to publish image", http.StatusInternalServerError)
			}
			return
		}

		metrics.NormalizationsTotal.WithLabelValues("success").Inc()
		metrics.UploadsAccepted.WithLabelValues("image").Inc()
		metrics.UploadBytesReceived.WithLabelValues("image").Add(float64(f.Size))
		result = append(result, asset)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, uploadResponse{Result: result})
}

// UploadVideo accepts exactly one file under the "video" field and
// publishes it unmodified for range streaming.
func (h *Handlers) UploadVideo(w http.ResponseWriter, r *http.Request) {
	staged, err := h.videoIntake.Parse(r)
	if err != nil {
		if ue, ok := asUploadError(err); ok {
			writeUploadError(w, ue)
			return
		}
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	f := staged[0]
	name := filepath.Base(f.Path)

	if err := h.store.SaveFile(r.Context(), "videos/"+name, f.Path); err != nil {
		logging.Error("failed to publish video %s: %v", name, err)
		f.Remove()
		writeJSONError(w, "failed to publish video", http.StatusInternalServerError)
		return
	}

	metrics.UploadsAccepted.WithLabelValues("video").Inc()
	metrics.UploadBytesReceived.WithLabelValues("video").Add(float64(f.Size))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, uploadResponse{Result: []assets.MediaAsset{{
		Name: name,
		Kind: assets.KindVideo,
		URL:  h.baseURL + "/static/video-stream/" + name,
	}}})
}

// UploadVideoHLS accepts one video, registers a pending encode job, and
// queues it for transcoding. The returned URL points at the master
// playlist the job will eventually produce.
func (h *Handlers) UploadVideoHLS(w http.ResponseWriter, r *http.Request) {
	if !h.transcodingEnabled {
		writeJSONError(w, "transcoding is not available", http.StatusServiceUnavailable)
		return
	}

	staged, err := h.videoIntake.Parse(r)
	if err != nil {
		if ue, ok := asUploadError(err); ok {
			writeUploadError(w, ue)
			return
		}
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	f := staged[0]
	base := filepath.Base(f.Path)
	jobID := strings.TrimSuffix(base, filepath.Ext(base))

	if err := h.jobs.Create(r.Context(), jobID); err != nil {
		logging.Error("failed to create encode job %s: %v", jobID, err)
		f.Remove()
		writeJSONError(w, "failed to create encode job", http.StatusInternalServerError)
		return
	}

	h.queue.Enqueue(jobID, f.Path)

	metrics.UploadsAccepted.WithLabelValues("hls").Inc()
	metrics.UploadBytesReceived.WithLabelValues("hls").Add(float64(f.Size))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, uploadResponse{
		Result: []assets.MediaAsset{{
			Name: jobID,
			Kind: assets.KindHLS,
			URL:  h.baseURL + "/static/video-hls/" + jobID + "/master.m3u8",
		}},
		JobID: jobID,
	})
}
