// Package jobs defines the encode job record and its persistence.
//
// One EncodeJob exists per video submitted for HLS transcoding, created
// pending at enqueue time and advanced only by the transcode worker. The
// state order pending -> processing -> {success, failed} is enforced by
// every Store implementation, so a terminal state can never be
// overwritten. Jobs are never deleted; callers poll them by id.
package jobs
