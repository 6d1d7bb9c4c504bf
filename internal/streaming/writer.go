package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"media-ingest/internal/logging"
)

var (
	// ErrWriteTimeout means a single write to the client took longer than
	// the configured limit. Slow consumers hit this.
	ErrWriteTimeout = errors.New("write timed out")

	// ErrClientGone means the request context was canceled, i.e. the
	// client went away mid-stream.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled means the stream was shut down on our side,
	// either via Close or a parent context.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig bounds how patient a stream is with its client.
type TimeoutWriterConfig struct {
	// WriteTimeout caps a single write to the socket.
	WriteTimeout time.Duration
	// IdleTimeout caps the gap between successful writes.
	IdleTimeout time.Duration
	// ChunkSize splits large writes so progress is visible; 0 writes
	// buffers as received.
	ChunkSize int
}

// DefaultTimeoutWriterConfig is tuned for video delivery over ordinary
// residential links.
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// TimeoutWriter is an http.ResponseWriter wrapper that aborts the
// stream instead of letting a stalled client pin the goroutine forever.
type TimeoutWriter struct {
	dst     http.ResponseWriter
	flusher http.Flusher
	cfg     TimeoutWriterConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	sent     int64
	started  time.Time
	lastSend time.Time
}

// NewTimeoutWriter wraps w and starts the idle watchdog. Callers must
// Close the writer when the stream ends.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, cfg TimeoutWriterConfig) *TimeoutWriter {
	sctx, cancel := context.WithCancel(ctx)
	now := time.Now()
	tw := &TimeoutWriter{
		dst:      w,
		cfg:      cfg,
		ctx:      sctx,
		cancel:   cancel,
		started:  now,
		lastSend: now,
	}
	tw.flusher, _ = w.(http.Flusher)
	go tw.watchIdle()
	return tw
}

// Write sends p to the client, splitting it into chunks when it exceeds
// ChunkSize and flushing after each chunk.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}
	if err := tw.ctx.Err(); err != nil {
		return 0, tw.ctxErr()
	}

	total := 0
	for len(p) > 0 {
		part := p
		if tw.cfg.ChunkSize > 0 && len(part) > tw.cfg.ChunkSize {
			part = p[:tw.cfg.ChunkSize]
		}
		n, err := tw.writeOne(part)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(part):]
		if len(p) > 0 && tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

// writeOne performs a single bounded write. The write itself runs in a
// goroutine because http.ResponseWriter has no deadline of its own.
func (tw *TimeoutWriter) writeOne(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := tw.dst.Write(p)
		done <- result{n, err}
	}()

	timer := time.NewTimer(tw.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err == nil {
			tw.mu.Lock()
			tw.sent += int64(res.n)
			tw.lastSend = time.Now()
			tw.mu.Unlock()
		}
		return res.n, res.err
	case <-timer.C:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.ctxErr()
	}
}

// watchIdle cancels the stream if no write lands within IdleTimeout.
func (tw *TimeoutWriter) watchIdle() {
	if tw.cfg.IdleTimeout <= 0 {
		return
	}
	tick := time.NewTicker(tw.cfg.IdleTimeout / 4)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastSend)
			closed := tw.closed
			tw.mu.Unlock()
			if closed {
				return
			}
			if idle > tw.cfg.IdleTimeout {
				logging.Warn("Stream idle for %v, aborting", idle)
				tw.cancel()
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *TimeoutWriter) ctxErr() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close stops the idle watchdog and rejects further writes. Safe to
// call more than once.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.closed {
		tw.closed = true
		tw.cancel()
	}
	return nil
}

// Stats reports bytes sent so far and elapsed time since the stream
// started.
func (tw *TimeoutWriter) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.sent, time.Since(tw.started)
}

// StreamWithTimeout copies r to the response under timeout protection
// and reports how many bytes reached the client. Status and headers
// must be written before calling; range responses carry an explicit
// Content-Length, so nothing here touches transfer encoding.
func StreamWithTimeout(ctx context.Context, w http.ResponseWriter, r io.Reader, cfg TimeoutWriterConfig) (int64, error) {
	tw := NewTimeoutWriter(ctx, w, cfg)
	defer tw.Close()

	_, err := io.Copy(tw, r)

	sent, took := tw.Stats()
	logging.Debug("Stream finished: %d bytes in %v", sent, took)
	return sent, err
}
