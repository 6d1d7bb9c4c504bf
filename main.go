package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-ingest/internal/handlers"
	"media-ingest/internal/jobs"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/middleware"
	"media-ingest/internal/queue"
	"media-ingest/internal/startup"
	"media-ingest/internal/storage"
	"media-ingest/internal/transcoder"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize job store
	jobStore, err := jobs.NewSQLiteStore(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize job store: %v", err)
	}
	defer func() {
		if err := jobStore.Close(); err != nil {
			logging.Warn("Job store close error: %v", err)
		}
	}()

	// Initialize asset store
	store, err := storage.New(config)
	if err != nil {
		startup.LogFatal("Failed to initialize storage backend: %v", err)
	}

	// Initialize transcoder and its queue
	trans := transcoder.New(filepath.Join(config.UploadDir, "hls"), store)
	q := queue.New(jobStore, trans)

	// Initialize handlers
	h := handlers.New(store, jobStore, q, config)

	// Setup router
	router := setupRouter(h)

	// Apply metrics middleware
	metricsHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(metricsHandler)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  0, // uploads may be slow; intake enforces size limits
		WriteTimeout: 0, // streaming has its own timeout protection
		IdleTimeout:  60 * time.Second,
	}

	// Metrics endpoint lives on its own port, away from the public surface
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, runtime.Version()).Set(1)

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	shutdownDone := make(chan struct{})
	go handleShutdown(srv, metricsSrv, q, trans, shutdownDone)

	// Start server
	startup.LogServerStarted(config.Port, config.MetricsPort, config.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")

	// Upload and job routes
	medias := r.PathPrefix("/medias").Subrouter()
	medias.HandleFunc("/upload-image", h.UploadImage).Methods("POST")
	medias.HandleFunc("/upload-video", h.UploadVideo).Methods("POST")
	medias.HandleFunc("/upload-video-hls", h.UploadVideoHLS).Methods("POST")
	medias.HandleFunc("/video-status/{id}", h.JobStatus).Methods("GET")

	// Published media routes
	static := r.PathPrefix("/static").Subrouter()
	static.HandleFunc("/image/{name}", h.ServeImage).Methods("GET")
	static.HandleFunc("/video-stream/{name}", h.StreamVideo).Methods("GET")
	static.HandleFunc("/video-hls/{id}/{path:.*}", h.ServeHLS).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, q *queue.Queue, trans *transcoder.Transcoder, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	// Stop the worker and kill any ffmpeg still running. Queued jobs
	// that never started remain pending in the store.
	q.Shutdown()
	trans.Cleanup()

	startup.LogShutdownComplete()
}
