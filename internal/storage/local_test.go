package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	t.Parallel()

	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("hello asset")
	if err := store.Save(ctx, "images/a.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	r, size, err := store.Open(ctx, "images/a.jpg")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()

	if size != int64(len(data)) {
		t.Errorf("size = %d, want %d", size, len(data))
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %q, want %q", got, data)
	}
}

func TestLocalStoreOpenMissing(t *testing.T) {
	t.Parallel()

	store := NewLocalStore(t.TempDir())
	_, _, err := store.Open(context.Background(), "images/missing.jpg")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open() missing key error = %v, want fs.ErrNotExist", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store := NewLocalStore(t.TempDir())
	tests := []string{
		"../outside.txt",
		"images/../../outside.txt",
	}
	for _, key := range tests {
		if err := store.Save(context.Background(), key, strings.NewReader("x"), 1, ""); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Save(%q) = %v, want ErrInvalidKey", key, err)
		}
		if _, _, err := store.Open(context.Background(), key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Open(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestLocalStoreSaveFileMovesSource(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	store := NewLocalStore(filepath.Join(tmp, "media"))

	src := filepath.Join(tmp, "staged.mp4")
	if err := os.WriteFile(src, []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.SaveFile(context.Background(), "videos/v.mp4", src); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source file should be gone after SaveFile, stat err = %v", err)
	}

	r, size, err := store.Open(context.Background(), "videos/v.mp4")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()
	if size != int64(len("video bytes")) {
		t.Errorf("size = %d, want %d", size, len("video bytes"))
	}
}

func TestLocalStoreSaveDir(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	store := NewLocalStore(filepath.Join(tmp, "media"))

	out := filepath.Join(tmp, "out")
	if err := os.MkdirAll(filepath.Join(out, "v0"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"master.m3u8":       "#EXTM3U\n",
		"v0/index.m3u8":     "#EXTM3U\n#EXT-X-VERSION:3\n",
		"v0/segment_000.ts": "segment zero",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(out, filepath.FromSlash(rel)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.SaveDir(context.Background(), "video-hls/job1", out); err != nil {
		t.Fatalf("SaveDir() error: %v", err)
	}

	for rel, content := range files {
		r, _, err := store.Open(context.Background(), "video-hls/job1/"+rel)
		if err != nil {
			t.Errorf("Open(%s) error: %v", rel, err)
			continue
		}
		got, _ := io.ReadAll(r)
		r.Close()
		if string(got) != content {
			t.Errorf("content of %s = %q, want %q", rel, got, content)
		}
	}
}
