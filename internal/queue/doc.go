// Package queue runs transcode jobs one at a time, in the order they
// were submitted. It owns the worker goroutine and the terminal state
// of each job; callers only enqueue and poll the job store.
package queue
