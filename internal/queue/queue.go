package queue

import (
	"context"
	"os"
	"sync"
	"time"

	"media-ingest/internal/jobs"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
)

// Transcoder converts a staged source video into its published form.
// Implementations are expected to be slow; the queue runs exactly one
// at a time.
type Transcoder interface {
	Transcode(ctx context.Context, jobID string, sourcePath string) error
}

type task struct {
	jobID      string
	sourcePath string
}

// Queue serializes transcode work. Tasks run strictly in enqueue
// order and at most one task is ever in flight. A failed task is
// removed from the queue like a successful one, so one bad upload
// never blocks the rest.
type Queue struct {
	store      jobs.Store
	transcoder Transcoder

	mu    sync.Mutex
	tasks []task
	busy  bool

	// baseCtx bounds every transcode run; canceled on Shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// New returns an idle queue. Work begins when the first task is
// enqueued.
func New(store jobs.Store, transcoder Transcoder) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		store:      store,
		transcoder: transcoder,
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// Enqueue registers a new transcode task and returns immediately.
// The job must already exist in the store in its pending state.
func (q *Queue) Enqueue(jobID string, sourcePath string) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task{jobID: jobID, sourcePath: sourcePath})
	depth := len(q.tasks)
	start := !q.busy
	if start {
		q.busy = true
	}
	q.mu.Unlock()

	metrics.TranscodeQueueDepth.Set(float64(depth))
	logging.Debug("queue: enqueued job %s (depth %d)", jobID, depth)

	if start {
		q.done.Add(1)
		go q.drain()
	}
}

// Depth reports the number of tasks waiting or in flight.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Shutdown cancels any in-flight transcode and waits for the worker
// goroutine to exit. Queued tasks that never started stay pending in
// the job store.
func (q *Queue) Shutdown() {
	q.cancel()
	q.done.Wait()
}

// drain runs tasks from the head of the queue until it is empty.
// Exactly one drain goroutine exists while busy is set.
func (q *Queue) drain() {
	defer q.done.Done()
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.busy = false
			q.mu.Unlock()
			return
		}
		head := q.tasks[0]
		q.mu.Unlock()

		q.run(head)

		q.mu.Lock()
		q.tasks = q.tasks[1:]
		depth := len(q.tasks)
		q.mu.Unlock()
		metrics.TranscodeQueueDepth.Set(float64(depth))

		if q.baseCtx.Err() != nil {
			q.mu.Lock()
			q.busy = false
			q.mu.Unlock()
			return
		}
	}
}

func (q *Queue) run(t task) {
	ctx := q.baseCtx
	if ctx.Err() != nil {
		return
	}

	if err := q.store.SetState(ctx, t.jobID, jobs.StateProcessing, ""); err != nil {
		logging.Error("queue: job %s could not enter processing: %v", t.jobID, err)
		q.finish(t, jobs.StateFailed, err.Error())
		return
	}

	metrics.TranscodeJobsInProgress.Inc()
	start := time.Now()
	err := q.transcoder.Transcode(ctx, t.jobID, t.sourcePath)
	metrics.TranscodeJobDuration.Observe(time.Since(start).Seconds())
	metrics.TranscodeJobsInProgress.Dec()

	if err != nil {
		logging.Error("queue: job %s failed: %v", t.jobID, err)
		q.finish(t, jobs.StateFailed, err.Error())
		return
	}

	logging.Info("queue: job %s complete", t.jobID)
	q.finish(t, jobs.StateSuccess, "")
}

// finish records the terminal state and deletes the staged source.
// The source is removed on failure too; a job is never retried.
//
// The write runs on its own context: during shutdown baseCtx is
// already canceled, and a canceled transcode must still land FAILED
// rather than sit in processing forever.
func (q *Queue) finish(t task, state jobs.State, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.store.SetState(ctx, t.jobID, state, message); err != nil {
		logging.Error("queue: job %s state update failed: %v", t.jobID, err)
	}
	metrics.TranscodeJobsTotal.WithLabelValues(string(state)).Inc()
	if err := os.Remove(t.sourcePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("queue: could not remove source for job %s: %v", t.jobID, err)
	}
}
