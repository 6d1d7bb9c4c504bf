package handlers

import (
	"time"

	"media-ingest/internal/jobs"
	"media-ingest/internal/media"
	"media-ingest/internal/startup"
	"media-ingest/internal/storage"
	"media-ingest/internal/streaming"
	"media-ingest/internal/upload"
)

// Enqueuer accepts transcode work. Satisfied by *queue.Queue.
type Enqueuer interface {
	Enqueue(jobID string, sourcePath string)
	Depth() int
}

type Handlers struct {
	store       storage.Store
	jobs        jobs.Store
	queue       Enqueuer
	normalizer  *media.Normalizer
	imageIntake *upload.Intake
	videoIntake *upload.Intake
	baseURL     string

	transcodingEnabled bool
	startTime          time.Time

	streamConfig streaming.TimeoutWriterConfig
}

func New(store storage.Store, jobStore jobs.Store, q Enqueuer, config *startup.Config) *Handlers {
	streamConfig := streaming.DefaultTimeoutWriterConfig()

	return &Handlers{
		store:              store,
		jobs:               jobStore,
		queue:              q,
		normalizer:         media.NewNormalizer(store, config.BaseURL),
		imageIntake:        upload.NewIntake(config.ImageTempDir, upload.ImageLimits()),
		videoIntake:        upload.NewIntake(config.VideoTempDir, upload.VideoLimits()),
		baseURL:            config.BaseURL,
		transcodingEnabled: config.TranscodingEnabled,
		startTime:          time.Now(),
		streamConfig:       streamConfig,
	}
}
