package assets

import (
	"path/filepath"
	"strings"
)

// Kind represents the kind of a published media asset.
type Kind string

const (
	// KindImage represents a normalized image asset.
	KindImage Kind = "image"
	// KindVideo represents a raw video file asset.
	KindVideo Kind = "video"
	// KindHLS represents an HLS rendition set (master playlist plus segments).
	KindHLS Kind = "hls"
)

// MediaAsset describes one published asset. Assets are immutable once
// created: a new upload always produces a new asset under a new name.
type MediaAsset struct {
	Name string `json:"name"`
	Kind Kind   `json:"type"`
	URL  string `json:"url"`
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
}

// videoContentTypes maps video file extensions to MIME types. ServeContent
// sniffing is unreliable for partial windows, so the type comes from the
// extension.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".m4v":  "video/x-m4v",
	".ts":   "video/mp2t",
}

// hlsContentTypes covers the two file kinds inside an HLS output directory.
var hlsContentTypes = map[string]string{
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",
}

// ContentTypeFor returns the content type to serve for the given file name,
// falling back to application/octet-stream for unknown extensions.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := hlsContentTypes[ext]; ok && ext == ".m3u8" {
		return ct
	}
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// IsVideoFile reports whether the file name carries a supported video extension.
func IsVideoFile(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}
