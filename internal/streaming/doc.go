// Package streaming provides timeout-protected delivery of media bytes
// over HTTP, plus resolution of Range headers into bounded byte
// windows.
//
// # Timeout Protection
//
// [TimeoutWriter] wraps an http.ResponseWriter and guards against slow
// or vanished clients:
//
//   - WriteTimeout bounds each individual write
//   - IdleTimeout bounds the gap between successful writes
//   - ChunkSize splits large writes so a stall is detected quickly and
//     the client sees steady progress between flushes
//
// [StreamWithTimeout] is the usual entry point; it copies a reader to
// the response and reports bytes written. Failures map to sentinel
// errors: [ErrWriteTimeout], [ErrClientGone] (request context
// canceled), and [ErrStreamCanceled].
//
// # Range Windows
//
// [ParseRange] resolves a "bytes=start-[end]" header against a known
// resource size. Open-ended ranges are capped at [DefaultChunkSize] so
// a single request never streams an entire large file; explicit ends
// are clamped to the resource. A start at or past the end of the
// resource yields [ErrUnsatisfiableRange], which handlers translate to
// a 416 response.
package streaming
