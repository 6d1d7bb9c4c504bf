// Package metrics provides Prometheus instrumentation for the
// media-ingest service.
//
// All metrics are prefixed with "media_ingest_" and registered with the
// default registry via promauto. Categories:
//
//   - HTTP: request totals, latency, and in-flight gauge, recorded by
//     the middleware chain.
//   - Uploads: accepted and rejected files by kind and rejection reason,
//     plus accepted byte counts.
//   - Image normalization: totals by status and a duration histogram.
//   - Transcoding: job totals by terminal status, job duration,
//     in-progress gauge, and queue depth.
//   - Streaming: bytes sent to clients and failures by cause.
//   - Job store: query totals and latency by operation.
//
// To expose them, mount promhttp.Handler() on the metrics endpoint:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Record from other packages through the exported variables:
//
//	metrics.UploadsRejected.WithLabelValues("payload_too_large").Inc()
//	metrics.NormalizationDuration.Observe(0.123)
//
// Call [InitializeMetrics] once at startup so every expected series is
// present from the first scrape.
package metrics
