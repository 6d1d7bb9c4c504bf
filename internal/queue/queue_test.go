package queue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-ingest/internal/jobs"
)

// mockTranscoder records call order and can be told to fail or stall
// per job.
type mockTranscoder struct {
	mu      sync.Mutex
	order   []string
	fail    map[string]error
	release map[string]chan struct{}
	active  int
	maxSeen int
}

func (m *mockTranscoder) Transcode(ctx context.Context, jobID, sourcePath string) error {
	m.mu.Lock()
	m.order = append(m.order, jobID)
	m.active++
	if m.active > m.maxSeen {
		m.maxSeen = m.active
	}
	gate := m.release[jobID]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			m.mu.Lock()
			m.active--
			m.mu.Unlock()
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.active--
	if err, ok := m.fail[jobID]; ok {
		return err
	}
	return nil
}

func (m *mockTranscoder) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitForState(t *testing.T, store jobs.Store, id string, want jobs.State) jobs.EncodeJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), id)
		if err == nil && job.State == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, err := store.Get(context.Background(), id)
	t.Fatalf("job %s never reached %s (last: %+v, err: %v)", id, want, job, err)
	return jobs.EncodeJob{}
}

func waitForDepth(t *testing.T, q *Queue, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if q.Depth() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("queue depth never reached %d (still %d)", want, q.Depth())
}

func TestQueueRunsJobsInOrder(t *testing.T) {
	store := jobs.NewMemoryStore()
	tc := &mockTranscoder{}
	q := New(store, tc)
	defer q.Shutdown()

	ids := []string{"first", "second", "third"}
	for _, id := range ids {
		if err := store.Create(context.Background(), id); err != nil {
			t.Fatal(err)
		}
		q.Enqueue(id, stageFile(t, id+".mp4"))
	}

	for _, id := range ids {
		waitForState(t, store, id, jobs.StateSuccess)
	}

	got := tc.calls()
	if len(got) != len(ids) {
		t.Fatalf("transcoder called %d times, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i] != id {
			t.Errorf("call %d = %s, want %s", i, got[i], id)
		}
	}
	if tc.maxSeen != 1 {
		t.Errorf("max concurrent transcodes = %d, want 1", tc.maxSeen)
	}
}

func TestQueueFailureDoesNotBlockLaterJobs(t *testing.T) {
	store := jobs.NewMemoryStore()
	tc := &mockTranscoder{fail: map[string]error{"bad": errors.New("codec not supported")}}
	q := New(store, tc)
	defer q.Shutdown()

	for _, id := range []string{"bad", "good"} {
		if err := store.Create(context.Background(), id); err != nil {
			t.Fatal(err)
		}
		q.Enqueue(id, stageFile(t, id+".mp4"))
	}

	failed := waitForState(t, store, "bad", jobs.StateFailed)
	if failed.Message != "codec not supported" {
		t.Errorf("failed message = %q, want transcoder error", failed.Message)
	}
	waitForState(t, store, "good", jobs.StateSuccess)
	waitForDepth(t, q, 0)
}

func TestQueueRemovesSourceAfterTerminalState(t *testing.T) {
	store := jobs.NewMemoryStore()
	tc := &mockTranscoder{fail: map[string]error{"bad": errors.New("boom")}}
	q := New(store, tc)
	defer q.Shutdown()

	good := stageFile(t, "good.mp4")
	bad := stageFile(t, "bad.mp4")
	for id, path := range map[string]string{"good": good, "bad": bad} {
		if err := store.Create(context.Background(), id); err != nil {
			t.Fatal(err)
		}
		q.Enqueue(id, path)
	}

	waitForState(t, store, "good", jobs.StateSuccess)
	waitForState(t, store, "bad", jobs.StateFailed)
	waitForDepth(t, q, 0)

	for _, path := range []string{good, bad} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("source %s should be removed, stat err = %v", path, err)
		}
	}
}

func TestQueueOnlyHeadIsProcessing(t *testing.T) {
	store := jobs.NewMemoryStore()
	gate := make(chan struct{})
	tc := &mockTranscoder{release: map[string]chan struct{}{"slow": gate}}
	q := New(store, tc)
	defer q.Shutdown()

	for _, id := range []string{"slow", "waiting"} {
		if err := store.Create(context.Background(), id); err != nil {
			t.Fatal(err)
		}
		q.Enqueue(id, stageFile(t, id+".mp4"))
	}

	waitForState(t, store, "slow", jobs.StateProcessing)

	// The second job must still be pending while the head runs.
	job, err := store.Get(context.Background(), "waiting")
	if err != nil {
		t.Fatal(err)
	}
	if job.State != jobs.StatePending {
		t.Errorf("queued job state = %s, want pending while head runs", job.State)
	}

	close(gate)
	waitForState(t, store, "slow", jobs.StateSuccess)
	waitForState(t, store, "waiting", jobs.StateSuccess)
}

// A transcode interrupted by shutdown must still land in the failed
// state even though the queue's base context is already canceled. The
// SQLite store honors contexts on every write, so it catches a
// terminal update issued on a dead context where the memory store
// would not.
func TestQueueShutdownRecordsFailureInSQLite(t *testing.T) {
	store, err := jobs.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	gate := make(chan struct{})
	defer close(gate)
	tc := &mockTranscoder{release: map[string]chan struct{}{"stuck": gate}}
	q := New(store, tc)

	if err := store.Create(context.Background(), "stuck"); err != nil {
		t.Fatal(err)
	}
	q.Enqueue("stuck", stageFile(t, "stuck.mp4"))
	waitForState(t, store, "stuck", jobs.StateProcessing)

	q.Shutdown()

	job := waitForState(t, store, "stuck", jobs.StateFailed)
	if job.Message == "" {
		t.Error("canceled job should record a failure message")
	}
}

func TestQueueShutdownCancelsInFlight(t *testing.T) {
	store := jobs.NewMemoryStore()
	gate := make(chan struct{})
	tc := &mockTranscoder{release: map[string]chan struct{}{"stuck": gate}}
	q := New(store, tc)

	if err := store.Create(context.Background(), "stuck"); err != nil {
		t.Fatal(err)
	}
	q.Enqueue("stuck", stageFile(t, "stuck.mp4"))
	waitForState(t, store, "stuck", jobs.StateProcessing)

	done := make(chan struct{})
	go func() {
		q.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not return after cancelation")
	}
}
