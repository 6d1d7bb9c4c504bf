// Package media normalizes uploaded images: decode with EXIF
// auto-orientation, fit inside a fixed bound without upscaling, re-encode
// as JPEG at a fixed quality, publish to durable storage.
package media
