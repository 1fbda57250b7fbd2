package reconcile

import (
	"fmt"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/status"
)

// Action is the single corrective lifecycle operation a reconciliation run
// may issue.
type Action int

const (
	// ActionNone means the observed state already satisfies the desired state.
	ActionNone Action = iota

	// ActionCreate submits an instance creation job.
	ActionCreate

	// ActionStart submits a startup job.
	ActionStart

	// ActionStop submits a shutdown job.
	ActionStop

	// ActionRestart submits a reboot job.
	ActionRestart

	// ActionDelete submits a destruction job.
	ActionDelete
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCreate:
		return "create"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionRestart:
		return "restart"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Decision is the outcome of evaluating the decision table for one run.
type Decision struct {
	// Action is the corrective operation to issue, ActionNone for a no-op.
	Action Action

	// Message explains a no-op. Empty when Action is not ActionNone: the
	// executor builds the message from the job outcome instead.
	Message string
}

// tableKey indexes the decision table by desired state and observed bucket.
type tableKey struct {
	desired v1alpha1.DesiredState
	bucket  status.Bucket
}

// entry is one cell of the decision table: either a decision or an error
// constructor for impossible transitions.
type entry struct {
	action Action

	// message builds the no-op explanation from the instance name and its
	// observed status. Nil for action cells.
	message func(name, observed string) string

	// errf builds the precondition error. Set only for cells where the
	// operator's intent cannot be satisfied.
	errf func(name string, desired v1alpha1.DesiredState) error
}

func staticMsg(msg string) func(string, string) string {
	return func(string, string) string { return msg }
}

func notPresentErr(name string, desired v1alpha1.DesiredState) error {
	return fmt.Errorf("instance %s is not present, can't set to %s", name, desired)
}

// table is the total decision function over DesiredState × Bucket.
//
// Idempotency is a first-class property: "present" on an existing instance
// and "stopped" on an already-stopped instance never submit a job. A
// "restarted" instance that is not running resolves to a plain start, with
// the same wait semantics as "started". Instances in an unrecognized status
// are treated like running ones: stop and restart still apply.
var table = map[tableKey]entry{
	{v1alpha1.StatePresent, status.BucketNotFound}:   {action: ActionCreate},
	{v1alpha1.StateAbsent, status.BucketNotFound}:    {action: ActionNone, message: staticMsg("No instance found")},
	{v1alpha1.StateStarted, status.BucketNotFound}:   {errf: notPresentErr},
	{v1alpha1.StateStopped, status.BucketNotFound}:   {errf: notPresentErr},
	{v1alpha1.StateRestarted, status.BucketNotFound}: {errf: notPresentErr},

	{v1alpha1.StatePresent, status.BucketRunning}:   {action: ActionNone, message: staticMsg("Instance present")},
	{v1alpha1.StateAbsent, status.BucketRunning}:    {action: ActionDelete},
	{v1alpha1.StateStarted, status.BucketRunning}:   {action: ActionNone, message: staticMsg("Instance already running")},
	{v1alpha1.StateStopped, status.BucketRunning}:   {action: ActionStop},
	{v1alpha1.StateRestarted, status.BucketRunning}: {action: ActionRestart},

	{v1alpha1.StatePresent, status.BucketStopped}: {action: ActionNone, message: staticMsg("Instance present")},
	{v1alpha1.StateAbsent, status.BucketStopped}:  {action: ActionDelete},
	{v1alpha1.StateStarted, status.BucketStopped}: {action: ActionStart},
	{v1alpha1.StateStopped, status.BucketStopped}: {action: ActionNone, message: func(_, observed string) string {
		return fmt.Sprintf("Instance already stopped, status %s", observed)
	}},
	{v1alpha1.StateRestarted, status.BucketStopped}: {action: ActionStart},

	{v1alpha1.StatePresent, status.BucketOther}:   {action: ActionNone, message: staticMsg("Instance present")},
	{v1alpha1.StateAbsent, status.BucketOther}:    {action: ActionDelete},
	{v1alpha1.StateStarted, status.BucketOther}:   {action: ActionStart},
	{v1alpha1.StateStopped, status.BucketOther}:   {action: ActionStop},
	{v1alpha1.StateRestarted, status.BucketOther}: {action: ActionRestart},
}

// Decide evaluates the decision table for one reconciliation run.
// observed is nil when the instance does not exist.
func Decide(desired v1alpha1.DesiredState, name string, observed *rapi.Instance) (Decision, error) {
	if !desired.Valid() {
		return Decision{}, fmt.Errorf("invalid desired state %q (valid: %v)", desired, v1alpha1.ValidStates())
	}

	bucket := status.BucketNotFound
	observedStatus := ""
	if observed != nil {
		bucket = status.Classify(observed.Status)
		observedStatus = observed.Status
	}

	e, ok := table[tableKey{desired, bucket}]
	if !ok {
		// Unreachable as long as the table stays total; the decision_test
		// totality check guards this.
		return Decision{}, fmt.Errorf("no decision for desired state %q and observed bucket %q", desired, bucket)
	}

	if e.errf != nil {
		return Decision{}, e.errf(name, desired)
	}

	d := Decision{Action: e.action}
	if e.message != nil {
		d.Message = e.message(name, observedStatus)
	}
	return d, nil
}
