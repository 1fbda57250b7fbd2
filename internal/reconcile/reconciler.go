// Package reconcile drives a Ganeti instance toward the state declared in its
// manifest. One reconciliation run observes the instance, evaluates the
// decision table, submits at most one corrective job, and reports whether
// anything changed.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/translate"
)

// Result is the outcome of one reconciliation run.
type Result struct {
	// Changed reports whether a corrective job was submitted. No-op runs,
	// including repeated runs with the same manifest, leave it false.
	Changed bool `json:"changed" yaml:"changed"`

	// Message is a human-readable summary of what happened.
	Message string `json:"message" yaml:"message"`

	// Instance is the observed state after the run, nil when the instance
	// does not exist anymore (or yet, when running without wait).
	Instance *rapi.Instance `json:"instance,omitempty" yaml:"instance,omitempty"`
}

// Options configure a Reconciler.
type Options struct {
	// Wait blocks the run until the submitted job reaches a terminal state.
	Wait bool

	// JobTimeout bounds the wait for a single job. Zero means 300 seconds.
	JobTimeout time.Duration

	// PollInterval is the fixed delay between job status polls.
	// Zero means rapi.DefaultPollInterval.
	PollInterval time.Duration
}

// DefaultJobTimeout is how long a run waits for one job before giving up.
const DefaultJobTimeout = 300 * time.Second

// Reconciler converges instances toward their declared state.
type Reconciler struct {
	client     instanceClient
	waiter     jobWaiter
	wait       bool
	jobTimeout time.Duration
	log        zerolog.Logger
}

// New creates a Reconciler around the given RAPI client.
func New(client *rapi.Client, opts Options, log zerolog.Logger) *Reconciler {
	waiter := &rapi.Waiter{Jobs: client, Interval: opts.PollInterval, Log: log}
	return newWithDeps(client, waiter, opts, log)
}

// newWithDeps wires explicit dependencies, for tests.
func newWithDeps(client instanceClient, waiter jobWaiter, opts Options, log zerolog.Logger) *Reconciler {
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Reconciler{
		client:     client,
		waiter:     waiter,
		wait:       opts.Wait,
		jobTimeout: timeout,
		log:        log,
	}
}

// Reconcile drives the named instance toward its declared state.
//
// The workflow is:
//  1. Observe the instance via the RAPI (404 means not found, not an error)
//  2. Evaluate the decision table for (desired state, observed status)
//  3. Submit the corrective job, if any, and optionally wait for it
//  4. Observe again so the result carries fresh instance state
//
// No-op runs reuse the single observation from step 1: nothing changed, so a
// second read would cost a round trip without adding information.
//
// A failed or timed-out job is a run failure, not a partial success.
func (r *Reconciler) Reconcile(ctx context.Context, inst *v1alpha1.Instance) (*Result, error) {
	name := inst.GetName()
	desired := inst.GetState()

	observed, err := r.observe(ctx, name)
	if err != nil {
		return nil, err
	}

	decision, err := Decide(desired, name, observed)
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("instance", name).
		Str("desired", string(desired)).
		Str("action", decision.Action.String()).
		Msg("evaluated decision table")

	if decision.Action == ActionNone {
		return &Result{Changed: false, Message: decision.Message, Instance: observed}, nil
	}

	msg, err := r.execute(ctx, decision.Action, inst)
	if err != nil {
		return nil, err
	}

	final, err := r.observe(ctx, name)
	if err != nil {
		return nil, err
	}

	return &Result{Changed: true, Message: msg, Instance: final}, nil
}

// observe fetches the current instance state, mapping "not found" to nil.
func (r *Reconciler) observe(ctx context.Context, name string) (*rapi.Instance, error) {
	observed, err := r.client.GetInstance(ctx, name)
	if err != nil {
		if errors.Is(err, rapi.ErrInstanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return observed, nil
}

// execute submits the corrective job for the chosen action and, when waiting
// is enabled, blocks until it completes. Returns the result message.
func (r *Reconciler) execute(ctx context.Context, action Action, inst *v1alpha1.Instance) (string, error) {
	name := inst.GetName()

	var (
		id  rapi.JobID
		err error

		// done is reported after a successfully awaited job, sent after a
		// fire-and-forget submission.
		done, sent string
	)

	switch action {
	case ActionCreate:
		payload, perr := translate.Payload(inst)
		if perr != nil {
			return "", perr
		}
		id, err = r.client.CreateInstance(ctx, payload)
		done, sent = fmt.Sprintf("Instance %s created", name), "Create job submitted"
	case ActionStart:
		id, err = r.client.StartInstance(ctx, name)
		done, sent = "Startup complete", "Startup signal sent"
	case ActionStop:
		id, err = r.client.StopInstance(ctx, name)
		done, sent = "Shutdown complete", "Shutdown signal sent"
	case ActionRestart:
		id, err = r.client.RebootInstance(ctx, name)
		done, sent = "Reboot complete", "Reboot signal sent"
	case ActionDelete:
		id, err = r.client.DeleteInstance(ctx, name)
		done, sent = "Destruction complete", "Destruction signal sent"
	default:
		return "", fmt.Errorf("unexpected action %q for instance %s", action, name)
	}

	if err != nil {
		return "", fmt.Errorf("failed to submit %s job for instance %s: %w", action, name, err)
	}

	r.log.Info().
		Str("instance", name).
		Str("action", action.String()).
		Int64("job", int64(id)).
		Msg("submitted job")

	if !r.wait {
		return sent, nil
	}

	ok, reason := r.waiter.Wait(ctx, id, r.jobTimeout)
	if !ok {
		return "", fmt.Errorf("%s job for instance %s did not succeed: %s", action, name, reason)
	}
	return done, nil
}
