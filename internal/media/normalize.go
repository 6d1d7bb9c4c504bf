package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"media-ingest/internal/assets"
	"media-ingest/internal/logging"
	"media-ingest/internal/storage"
	"media-ingest/internal/upload"

	"github.com/disintegration/imaging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// MaxDimension bounds the longest side of a normalized image. Smaller
	// sources are never enlarged.
	MaxDimension = 1200

	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 80
)

// ErrImageProcessingFailed marks a decode or encode failure. Malformed
// image data will not become valid on retry, so the staged file is removed
// regardless.
var ErrImageProcessingFailed = errors.New("image processing failed")

// Normalizer converts staged images into bounded, web-safe JPEG assets.
type Normalizer struct {
	store   storage.Store
	baseURL string
}

// NewNormalizer creates a Normalizer publishing to the given store.
func NewNormalizer(store storage.Store, baseURL string) *Normalizer {
	return &Normalizer{store: store, baseURL: baseURL}
}

// Normalize decodes the staged image, fits it inside MaxDimension square
// preserving aspect ratio, re-encodes it as JPEG, and publishes it keyed
// by the staged file's base name. The staged file is deleted on every
// path, success or failure.
func (n *Normalizer) Normalize(ctx context.Context, staged upload.StagedFile) (assets.MediaAsset, error) {
	defer staged.Remove()

	img, err := imaging.Open(staged.Path, imaging.AutoOrientation(true))
	if err != nil {
		return assets.MediaAsset{}, fmt.Errorf("%w: decode %s: %v", ErrImageProcessingFailed, filepath.Base(staged.Path), err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
		logging.Debug("Resized image %s from %dx%d to %dx%d",
			staged.Path, bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return assets.MediaAsset{}, fmt.Errorf("%w: encode: %v", ErrImageProcessingFailed, err)
	}

	base := filepath.Base(staged.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	key := "images/" + name

	if err := n.store.Save(ctx, key, &buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return assets.MediaAsset{}, fmt.Errorf("failed to publish image %s: %w", name, err)
	}

	return assets.MediaAsset{
		Name: name,
		Kind: assets.KindImage,
		URL:  n.baseURL + "/static/image/" + name,
	}, nil
}

// Dimensions holds image width and height.
type Dimensions struct {
	Width  int
	Height int
}

// GetDimensions returns image dimensions without fully decoding the image.
func GetDimensions(path string) (*Dimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &Dimensions{Width: config.Width, Height: config.Height}, nil
}
