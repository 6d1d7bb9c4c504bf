package jobs

import (
	"context"
	"errors"
	"time"
)

// State is the lifecycle stage of an encode job. Transitions are
// monotonic: pending -> processing -> {success, failed}. A terminal state
// is never overwritten.
type State string

const (
	// StatePending means the job is queued and has not started.
	StatePending State = "pending"
	// StateProcessing means the transcode worker is running the job.
	StateProcessing State = "processing"
	// StateSuccess means the rendition set was published.
	StateSuccess State = "success"
	// StateFailed means the transcode failed; Message holds the diagnostic.
	StateFailed State = "failed"
)

// Terminal reports whether the state ends the job's lifecycle.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// validNext returns whether a transition from s to next is allowed.
func (s State) validNext(next State) bool {
	switch s {
	case StatePending:
		return next == StateProcessing || next == StateFailed
	case StateProcessing:
		return next == StateSuccess || next == StateFailed
	default:
		return false
	}
}

// EncodeJob is the persisted record tracking one video's transcode
// lifecycle. Jobs are retained after completion as audit/status records
// and polled by id.
type EncodeJob struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store errors.
var (
	// ErrNotFound is returned when no job exists under the given id.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition is returned when an update would violate the
	// monotonic state order, including any write to a terminal job.
	ErrInvalidTransition = errors.New("invalid job state transition")
	// ErrDuplicate is returned when creating a job whose id already exists.
	ErrDuplicate = errors.New("job already exists")
)

// Store persists encode jobs. Updates must be atomic per job id; readers
// may poll concurrently with the worker's writes.
type Store interface {
	// Create records a new job in StatePending.
	Create(ctx context.Context, id string) error
	// SetState advances a job to the given state, recording a diagnostic
	// message for failures.
	SetState(ctx context.Context, id string, state State, message string) error
	// Get returns the job or ErrNotFound.
	Get(ctx context.Context, id string) (EncodeJob, error)
}
