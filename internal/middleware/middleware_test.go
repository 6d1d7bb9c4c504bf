package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string", "GET", "GET"},
		{"newline injection", "path\nfake log line", "path fake log line"},
		{"carriage return", "a\rb", "a b"},
		{"null byte stripped", "a\x00b", "ab"},
		{"ansi escape stripped", "a\x1b[31mb", "a[31mb"},
		{"tab preserved", "a\tb", "a\tb"},
		{"other control stripped", "a\x07b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShouldSkip(t *testing.T) {
	config := DefaultLoggingConfig()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"api path logged", "/medias/upload-image", false},
		{"job status logged", "/medias/video-status/abc", false},
		{"served image skipped", "/static/image/photo.jpg", true},
		{"hls segment skipped", "/static/video-hls/abc/v0/segment_001.ts", true},
		{"hls playlist skipped", "/static/video-hls/abc/master.m3u8", true},
		{"served video skipped", "/static/video-stream/clip.mp4", true},
		{"health check logged by default", "/healthz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkip(tt.path, config); got != tt.want {
				t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldSkipHealthChecksWhenDisabled(t *testing.T) {
	config := DefaultLoggingConfig()
	config.LogHealthChecks = false

	for _, path := range []string{"/health", "/healthz", "/livez", "/readyz"} {
		if !shouldSkip(path, config) {
			t.Errorf("shouldSkip(%q) = false, want true with health logging disabled", path)
		}
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.10:54321", nil, "192.168.1.10"},
		{"x-forwarded-for", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"x-forwarded-for chain", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"}, "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientAddr(r); got != tt.want {
				t.Errorf("clientAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/medias/upload-image", "/medias/upload-image"},
		{"/medias/video-status/0193e4a2", "/medias/video-status/{id}"},
		{"/static/image/photo.jpg", "/static/image/{name}"},
		{"/static/video-stream/clip.mp4", "/static/video-stream/{name}"},
		{"/static/video-hls/abc/master.m3u8", "/static/video-hls/{path}"},
		{"/static/video-hls/abc/v0/segment_001.ts", "/static/video-hls/{path}"},
		{"/healthz", "/healthz"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	r := httptest.NewRequest(http.MethodPost, "/medias/upload-image", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "created" {
		t.Errorf("body = %q, want %q", w.Body.String(), "created")
	}
}

func TestCompressionCompressesPlaylists(t *testing.T) {
	payload := strings.Repeat("#EXTINF:4.000000,\nsegment_000.ts\n", 200)

	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		w.Write([]byte(payload))
	}))

	r := httptest.NewRequest(http.MethodGet, "/static/video-hls/abc/master.m3u8", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	gz, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer gz.Close()
	decompressed, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(decompressed) != payload {
		t.Error("decompressed body does not match original payload")
	}
}

func TestCompressionSkipsRangeRequests(t *testing.T) {
	payload := strings.Repeat("x", 4096)

	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	r := httptest.NewRequest(http.MethodGet, "/static/video-stream/clip.mp4", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	r.Header.Set("Range", "bytes=0-")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q, want empty for range request", got)
	}
	if w.Body.String() != payload {
		t.Error("range request body should pass through unmodified")
	}
}

func TestCompressionSkipsSmallAndBinaryResponses(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"small response", "application/json", `{"ok":true}`},
		{"video segment", "video/mp2t", strings.Repeat("b", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Accept-Encoding", "gzip")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if got := w.Header().Get("Content-Encoding"); got != "" {
				t.Errorf("Content-Encoding = %q, want empty", got)
			}
			if w.Body.String() != tt.body {
				t.Error("body should pass through unmodified")
			}
		})
	}
}

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusPartialContent)
	rw.WriteHeader(http.StatusOK) // second call must be ignored
	rw.Write([]byte("0123456789"))

	if rw.statusCode != http.StatusPartialContent {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusPartialContent)
	}
	if rw.bytesWritten != 10 {
		t.Errorf("bytesWritten = %d, want 10", rw.bytesWritten)
	}
}
