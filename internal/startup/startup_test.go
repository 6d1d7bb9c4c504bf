package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndDerivedPaths(t *testing.T) {
	tmp := t.TempDir()

	t.Setenv("UPLOAD_DIR", filepath.Join(tmp, "uploads"))
	t.Setenv("MEDIA_DIR", filepath.Join(tmp, "media"))
	t.Setenv("DATABASE_DIR", filepath.Join(tmp, "db"))
	t.Setenv("PORT", "8181")
	t.Setenv("BASE_URL", "http://example.test:8181/")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.Port != "8181" {
		t.Errorf("Port = %q, want %q", config.Port, "8181")
	}
	if config.BaseURL != "http://example.test:8181" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", config.BaseURL)
	}
	if config.StorageBackend != "local" {
		t.Errorf("StorageBackend = %q, want local default", config.StorageBackend)
	}

	wantDatabase := filepath.Join(tmp, "db", "jobs.db")
	if config.DatabasePath != wantDatabase {
		t.Errorf("DatabasePath = %q, want %q", config.DatabasePath, wantDatabase)
	}

	// Scratch and media directories must exist after LoadConfig
	for _, dir := range []string{
		config.ImageTempDir,
		config.VideoTempDir,
		config.ImageDir,
		config.VideoDir,
		config.HLSDir,
	} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("directory %s not created: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestLoadConfigRejectsUnknownStorageBackend(t *testing.T) {
	tmp := t.TempDir()

	t.Setenv("UPLOAD_DIR", filepath.Join(tmp, "uploads"))
	t.Setenv("MEDIA_DIR", filepath.Join(tmp, "media"))
	t.Setenv("DATABASE_DIR", filepath.Join(tmp, "db"))
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() with STORAGE_BACKEND=ftp should fail")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"0", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("STARTUP_TEST_BOOL", tt.value)
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("ensureDirectory on a regular file should fail")
	}
}
