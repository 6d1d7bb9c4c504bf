package metrics

// InitializeMetrics pre-populates the expected label combinations so
// that every series is exported from the first Prometheus scrape.
// Call this once at startup.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video", "hls"} {
		UploadsAccepted.WithLabelValues(kind)
		UploadBytesReceived.WithLabelValues(kind)
	}

	for _, reason := range []string{
		"field_name_mismatch", "unsupported_media_type",
		"payload_too_large", "too_many_files", "empty_upload",
	} {
		UploadsRejected.WithLabelValues(reason)
	}

	for _, status := range []string{"success", "failed"} {
		NormalizationsTotal.WithLabelValues(status)
		TranscodeJobsTotal.WithLabelValues(status)
	}

	for _, kind := range []string{"video", "hls"} {
		StreamBytesSent.WithLabelValues(kind)
	}
	for _, cause := range []string{"timeout", "client_gone", "canceled"} {
		StreamErrors.WithLabelValues(cause)
	}

	for _, op := range []string{"create", "set_state", "get"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
