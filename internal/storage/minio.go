package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"media-ingest/internal/assets"
	"media-ingest/internal/logging"
	"media-ingest/internal/startup"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore publishes assets to an S3-compatible bucket. Selected with
// STORAGE_BACKEND=minio.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint and ensures the bucket
// exists.
func NewMinioStore(config *startup.Config) (*MinioStore, error) {
	client, err := minio.New(config.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.MinioAccessKey, config.MinioSecretKey, ""),
		Secure: config.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioStore{client: client, bucket: config.MinioBucket}
	if err := s.ensureBucket(); err != nil {
		return nil, err
	}

	logging.Info("MinIO storage ready: endpoint=%s bucket=%s", config.MinioEndpoint, config.MinioBucket)
	return s, nil
}

func (s *MinioStore) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
		logging.Info("Created MinIO bucket: %s", s.bucket)
	}
	return nil
}

// Save uploads one object.
func (s *MinioStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = assets.ContentTypeFor(key)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// SaveFile uploads one local file, then removes the source so ownership
// semantics match the local backend's rename.
func (s *MinioStore) SaveFile(ctx context.Context, key, path string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: assets.ContentTypeFor(key),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove published source %s: %v", path, err)
	}
	return nil
}

// SaveDir uploads an output directory file by file, preserving the
// relative layout beneath prefix.
func (s *MinioStore) SaveDir(ctx context.Context, prefix, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := prefix + "/" + filepath.ToSlash(rel)
		return s.SaveFile(ctx, key, path)
	})
}

// Open fetches the object. minio.Object supports Seek, which the range
// endpoint relies on. Missing keys map to fs.ErrNotExist.
func (s *MinioStore) Open(ctx context.Context, key string) (io.ReadSeekCloser, int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	info, err := obj.Stat()
	if err != nil {
		if closeErr := obj.Close(); closeErr != nil {
			logging.Warn("failed to close object %s: %v", key, closeErr)
		}
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, 0, fmt.Errorf("object %s: %w", key, fs.ErrNotExist)
		}
		return nil, 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return obj, info.Size, nil
}
