package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"media-ingest/internal/logging"
)

// LocalStore publishes assets onto the local filesystem under a root
// directory. It is the default backend.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// resolve maps a key to an absolute path under the root, rejecting any key
// that would escape it.
func (s *LocalStore) resolve(key string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve key %q: %w", key, err)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes storage root: %w", key, ErrInvalidKey)
	}
	return abs, nil
}

// Save writes the object to disk, creating parent directories as needed.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		if closeErr := dst.Close(); closeErr != nil {
			logging.Warn("failed to close asset file %s: %v", path, closeErr)
		}
		removeFile(path)
		return fmt.Errorf("failed to write asset %s: %w", key, err)
	}
	if err := dst.Close(); err != nil {
		removeFile(path)
		return fmt.Errorf("failed to close asset %s: %w", key, err)
	}
	return nil
}

// SaveFile moves the local file into the store when possible, falling back
// to a copy across filesystems.
func (s *LocalStore) SaveFile(ctx context.Context, key, path string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	if err := os.Rename(path, dst); err == nil {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Warn("failed to close source file %s: %v", path, err)
		}
	}()

	return s.Save(ctx, key, src, 0, "")
}

// SaveDir publishes an output directory file by file.
func (s *LocalStore) SaveDir(ctx context.Context, prefix, dir string) error {
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

// Open returns the asset file and its size. Missing assets surface
// fs.ErrNotExist via os.Open.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadSeekCloser, int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn("failed to close asset file %s: %v", path, closeErr)
		}
		return nil, 0, fmt.Errorf("failed to stat asset %s: %w", key, err)
	}
	return f, info.Size(), nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove partial asset %s: %v", path, err)
	}
}
