package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig controls gzip behavior for API responses.
type CompressionConfig struct {
	// MinSize is the smallest body worth compressing.
	MinSize int
	// Level is passed to gzip.NewWriterLevel.
	Level int
	// CompressibleTypes lists exact media types eligible for gzip.
	CompressibleTypes []string
}

// DefaultCompressionConfig compresses JSON and HLS playlists. Images,
// MP4, and transport-stream segments are already compressed and never
// appear in the list.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"application/json",
			"application/vnd.apple.mpegurl",
			"text/html",
			"text/plain",
		},
	}
}

var gzipPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// gzipResponseWriter defers the compress-or-not decision until either
// MinSize bytes are buffered or the handler returns, since the choice
// depends on both body size and Content-Type.
type gzipResponseWriter struct {
	http.ResponseWriter
	cfg CompressionConfig

	status  int
	pending []byte
	gz      *gzip.Writer
	decided bool
}

func newGzipResponseWriter(w http.ResponseWriter, cfg CompressionConfig) *gzipResponseWriter {
	return &gzipResponseWriter{
		ResponseWriter: w,
		cfg:            cfg,
		status:         http.StatusOK,
		pending:        make([]byte, 0, cfg.MinSize+1),
	}
}

func (g *gzipResponseWriter) WriteHeader(status int) {
	if !g.decided {
		g.status = status
	}
}

func (g *gzipResponseWriter) Write(p []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(p)
		}
		return g.ResponseWriter.Write(p)
	}
	g.pending = append(g.pending, p...)
	if len(g.pending) > g.cfg.MinSize {
		g.decide()
	}
	return len(p), nil
}

func (g *gzipResponseWriter) compressible() bool {
	ct := g.Header().Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, _ := strings.Cut(ct, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, want := range g.cfg.CompressibleTypes {
		if mediaType == want {
			return true
		}
	}
	return false
}

// decide commits to a representation and flushes the buffered body.
func (g *gzipResponseWriter) decide() {
	if g.decided {
		return
	}
	g.decided = true

	if len(g.pending) >= g.cfg.MinSize && g.compressible() {
		g.Header().Del("Content-Length")
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Add("Vary", "Accept-Encoding")

		g.gz = gzipPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
		g.ResponseWriter.WriteHeader(g.status)
		g.gz.Write(g.pending)
	} else {
		g.ResponseWriter.WriteHeader(g.status)
		g.ResponseWriter.Write(g.pending)
	}
	g.pending = nil
}

func (g *gzipResponseWriter) Close() error {
	g.decide()
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	gzipPool.Put(g.gz)
	g.gz = nil
	return err
}

func (g *gzipResponseWriter) Flush() {
	g.decide()
	if g.gz != nil {
		g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression gzips eligible responses. Range requests pass through
// untouched: a 206 body is a byte window into the raw resource and its
// offsets must not change.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip"),
				r.Header.Get("Range") != "",
				r.Header.Get("Upgrade") != "":
				next.ServeHTTP(w, r)
				return
			}

			gzw := newGzipResponseWriter(w, config)
			defer gzw.Close()
			next.ServeHTTP(gzw, r)
		})
	}
}
