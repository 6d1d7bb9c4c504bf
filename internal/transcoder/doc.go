// Package transcoder turns uploaded videos into HLS rendition sets.
//
// Each job probes the source with ffprobe, picks the adaptive bitrate
// ladder rungs that fit the source resolution, runs one ffmpeg pass per
// rendition, writes a master playlist, and publishes the result through
// the storage layer. All ffmpeg processes are tracked so they can be
// killed on shutdown.
package transcoder
