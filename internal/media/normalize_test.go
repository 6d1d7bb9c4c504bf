package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"media-ingest/internal/storage"
	"media-ingest/internal/upload"
)

// createTestImage writes a gradient test image so resizing is verifiable.
func createTestImage(t *testing.T, path string, width, height int, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image file: %v", err)
	}
	defer f.Close()

	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(f, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func stageImage(t *testing.T, dir string, width, height int, format string) upload.StagedFile {
	t.Helper()
	path := filepath.Join(dir, "staged-test."+format)
	createTestImage(t, path, width, height, format)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return upload.StagedFile{Path: path, FieldName: "image", MimeType: "image/" + format, Size: info.Size()}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		format     string
		wantWidth  int
		wantHeight int
	}{
		{
			name:   "large landscape is bounded",
			width:  2400, height: 1200, format: "jpeg",
			wantWidth: 1200, wantHeight: 600,
		},
		{
			name:   "large portrait is bounded",
			width:  1000, height: 2000, format: "png",
			wantWidth: 600, wantHeight: 1200,
		},
		{
			name:   "small image is not upscaled",
			width:  640, height: 480, format: "jpeg",
			wantWidth: 640, wantHeight: 480,
		},
		{
			name:   "exactly at the bound is untouched",
			width:  1200, height: 1200, format: "png",
			wantWidth: 1200, wantHeight: 1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			store := storage.NewLocalStore(filepath.Join(tmp, "media"))
			n := NewNormalizer(store, "http://localhost:8080")

			staged := stageImage(t, tmp, tt.width, tt.height, tt.format)

			asset, err := n.Normalize(context.Background(), staged)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}

			if asset.Kind != "image" {
				t.Errorf("Kind = %q, want image", asset.Kind)
			}
			if filepath.Ext(asset.Name) != ".jpg" {
				t.Errorf("Name = %q, want .jpg output", asset.Name)
			}
			wantURL := "http://localhost:8080/static/image/" + asset.Name
			if asset.URL != wantURL {
				t.Errorf("URL = %q, want %q", asset.URL, wantURL)
			}

			// Staged file is consumed on success
			if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
				t.Errorf("staged file should be removed, stat err = %v", err)
			}

			published := filepath.Join(tmp, "media", "images", asset.Name)
			dims, err := GetDimensions(published)
			if err != nil {
				t.Fatalf("GetDimensions on published asset: %v", err)
			}
			if dims.Width != tt.wantWidth || dims.Height != tt.wantHeight {
				t.Errorf("published dimensions = %dx%d, want %dx%d",
					dims.Width, dims.Height, tt.wantWidth, tt.wantHeight)
			}
			if dims.Width > MaxDimension || dims.Height > MaxDimension {
				t.Errorf("published dimensions %dx%d exceed the %d bound",
					dims.Width, dims.Height, MaxDimension)
			}
		})
	}
}

func TestNormalizeCorruptImage(t *testing.T) {
	tmp := t.TempDir()
	store := storage.NewLocalStore(filepath.Join(tmp, "media"))
	n := NewNormalizer(store, "http://localhost:8080")

	path := filepath.Join(tmp, "corrupt.jpg")
	if err := os.WriteFile(path, []byte("this is not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	staged := upload.StagedFile{Path: path, FieldName: "image", MimeType: "image/jpeg", Size: 18}

	_, err := n.Normalize(context.Background(), staged)
	if !errors.Is(err, ErrImageProcessingFailed) {
		t.Errorf("Normalize() error = %v, want ErrImageProcessingFailed", err)
	}

	// Staged file is consumed on failure too: no retry will fix bad data
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("staged file should be removed after failure, stat err = %v", err)
	}
}

func TestGetDimensions(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "dims.png")
	createTestImage(t, path, 321, 123, "png")

	dims, err := GetDimensions(path)
	if err != nil {
		t.Fatalf("GetDimensions() error: %v", err)
	}
	if dims.Width != 321 || dims.Height != 123 {
		t.Errorf("dimensions = %dx%d, want 321x123", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(filepath.Join(tmp, "missing.png")); err == nil {
		t.Error("GetDimensions on missing file should fail")
	}
}
