// Package handlers implements the HTTP surface of the media ingest
// service: multipart upload endpoints, encode job status polling, and
// delivery of published images, range-streamed videos, and HLS
// playlists and segments. Routing is wired in main via gorilla/mux;
// handlers read path variables and delegate the work to the upload,
// media, jobs, queue, storage, and streaming packages.
package handlers
