package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_ingest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Upload metrics
var (
	UploadsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_uploads_accepted_total",
			Help: "Total number of accepted upload files by kind",
		},
		[]string{"kind"}, // "image", "video", "hls"
	)

	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_uploads_rejected_total",
			Help: "Total number of rejected uploads by reason",
		},
		[]string{"reason"},
	)

	UploadBytesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_upload_bytes_received_total",
			Help: "Total bytes accepted from uploads by kind",
		},
		[]string{"kind"},
	)
)

// Image normalization metrics
var (
	NormalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_image_normalizations_total",
			Help: "Total number of image normalizations",
		},
		[]string{"status"},
	)

	NormalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_ingest_image_normalization_duration_seconds",
			Help:    "Image normalization duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Transcode metrics
var (
	TranscodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_transcode_jobs_total",
			Help: "Total number of transcode jobs by terminal status",
		},
		[]string{"status"},
	)

	TranscodeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_ingest_transcode_job_duration_seconds",
			Help:    "Transcode job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	TranscodeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_transcode_jobs_in_progress",
			Help: "Number of transcode jobs currently in progress",
		},
	)

	TranscodeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_transcode_queue_depth",
			Help: "Number of transcode jobs waiting or in flight",
		},
	)
)

// Streaming metrics
var (
	StreamBytesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_stream_bytes_sent_total",
			Help: "Total bytes written to streaming clients by kind",
		},
		[]string{"kind"}, // "video", "hls"
	)

	StreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_stream_errors_total",
			Help: "Total streaming failures by cause",
		},
		[]string{"cause"}, // "timeout", "client_gone", "canceled"
	)
)

// Job store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_db_queries_total",
			Help: "Total number of job store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_ingest_db_query_duration_seconds",
			Help:    "Job store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_ingest_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
