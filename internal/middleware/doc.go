// Package middleware provides HTTP middleware for the media ingest service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path cardinality
//   - Response compression (gzip) for playlists and JSON, bypassed for
//     range requests
package middleware
