package rapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is the fixed delay between two job status polls.
// No backoff: job completion latency on a Ganeti cluster is dominated by the
// operation itself, not by queueing.
const DefaultPollInterval = 2 * time.Second

// JobGetter fetches the current state of a job.
//
// In production, this is satisfied by *Client.
// In tests, this is satisfied by mock implementations.
type JobGetter interface {
	GetJob(ctx context.Context, id JobID) (*Job, error)
}

// Waiter polls a submitted job until it reaches a terminal status or a
// deadline elapses, converting the outcome into a binary pass/fail result
// with a human-readable reason.
type Waiter struct {
	// Jobs fetches job state, usually the RAPI client.
	Jobs JobGetter

	// Interval is the fixed poll interval. Zero means DefaultPollInterval.
	Interval time.Duration

	// Log receives one event per poll at debug level.
	Log zerolog.Logger
}

// Wait polls the job until terminal or until timeout elapses.
//
// The first poll happens immediately. The returned bool is true only when the
// job reached the "success" status; every other outcome (failed or canceled
// job, transport error, timeout, context cancellation) is false, with the
// message explaining why. Wait never declares failure later than timeout
// after its first poll, except for the in-flight duration of the last poll
// request itself.
func (w *Waiter) Wait(ctx context.Context, id JobID, timeout time.Duration) (bool, string) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := time.Now()
	deadline := start.Add(timeout)

	for {
		job, err := w.Jobs.GetJob(ctx, id)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return false, fmt.Sprintf("error waiting for job %d, response code %d", id, statusErr.Code)
			}
			return false, fmt.Sprintf("error waiting for job %d: %v", id, err)
		}

		w.Log.Debug().
			Int64("job", int64(id)).
			Str("status", string(job.Status)).
			Msg("polled job")

		if job.Status.Terminal() {
			if job.Status == JobSuccess {
				return true, "Success"
			}
			if len(job.Opresult) > 0 {
				// Only the first entry: it describes the operation that failed.
				return false, fmt.Sprintf("job %d failed: %v", id, job.Opresult[0])
			}
			return false, fmt.Sprintf("job %d failed with status %q", id, job.Status)
		}

		// Declare timeout as soon as the next poll cannot land inside the
		// deadline, so the caller is never blocked past it.
		now := time.Now()
		if now.Add(interval).After(deadline) {
			return false, fmt.Sprintf(
				"timeout waiting for job %d: started %s, timeout %s, now %s",
				id, start.Format(time.RFC3339), timeout, now.Format(time.RFC3339))
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, fmt.Sprintf("canceled waiting for job %d: %v", id, ctx.Err())
		case <-timer.C:
		}
	}
}
