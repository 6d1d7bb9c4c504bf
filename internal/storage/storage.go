package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"media-ingest/internal/startup"
)

// ErrInvalidKey marks a key that is not a clean relative path, such as
// one containing ".." elements. Callers serving user-supplied names
// should map it to a client error rather than a server failure.
var ErrInvalidKey = errors.New("invalid storage key")

// Store is the durable asset store. Keys are slash-separated paths such as
// "images/ab12.jpg" or "video-hls/<job>/v0/segment_000.ts". Assets are
// written once and read many times; Store implementations do not support
// overwriting semantics beyond last-write-wins.
type Store interface {
	// Save publishes one object from a reader.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// SaveFile publishes one local file under key.
	SaveFile(ctx context.Context, key, path string) error
	// SaveDir publishes every file under dir, preserving the relative
	// layout beneath prefix. Used for HLS output directories, whose
	// playlists reference segment paths relatively.
	SaveDir(ctx context.Context, prefix, dir string) error
	// Open returns a reader over the object and its total size.
	// A missing object yields an error satisfying errors.Is(err, fs.ErrNotExist).
	Open(ctx context.Context, key string) (io.ReadSeekCloser, int64, error)
}

// New builds the Store selected by the configuration.
func New(config *startup.Config) (Store, error) {
	switch config.StorageBackend {
	case "minio":
		return NewMinioStore(config)
	case "local":
		return NewLocalStore(config.MediaDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
	}
}
